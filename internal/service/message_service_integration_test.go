package service_test

import (
	"sync"
	"testing"

	"github.com/jasobih/gigboard/internal/apperrors"
	"github.com/jasobih/gigboard/internal/broker"
	"github.com/jasobih/gigboard/internal/models"
	"github.com/jasobih/gigboard/internal/repository"
	"github.com/jasobih/gigboard/internal/service"
	"github.com/jasobih/gigboard/internal/testutil"
	"github.com/jasobih/gigboard/internal/wal"
	"github.com/jasobih/gigboard/pkg/logger"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

type MessageServiceIntegrationTestSuite struct {
	suite.Suite
	testDB         *testutil.TestDatabase
	testRedis      *testutil.TestRedis
	messageService *service.MessageService
	walInstance    *wal.WAL
	sender         *models.User
	peer           *models.User
	gig            *models.Gig
}

func (s *MessageServiceIntegrationTestSuite) SetupSuite() {
	logger.Init(false)

	s.testDB = testutil.SetupTestDatabase(s.T())
	s.testRedis = testutil.SetupTestRedis(s.T())

	s.sender, _ = testutil.CreateTestUser("sender", "sender@example.com", "Pass12345", models.RoleMember)
	s.peer, _ = testutil.CreateTestUser("peer", "peer@example.com", "Pass12345", models.RoleMember)
	s.testDB.DB.Create(s.sender)
	s.testDB.DB.Create(s.peer)
}

func (s *MessageServiceIntegrationTestSuite) TearDownSuite() {
	s.walInstance.Close()
	s.testDB.Teardown(s.T())
	s.testRedis.Teardown(s.T())
}

func (s *MessageServiceIntegrationTestSuite) SetupTest() {
	s.testDB.DB.Exec("DELETE FROM messages")
	s.testDB.DB.Exec("DELETE FROM gigs")

	if s.walInstance != nil {
		s.walInstance.Close()
	}
	walInstance, err := wal.NewWAL(s.T().TempDir() + "/wal_messages")
	assert.NoError(s.T(), err)
	s.walInstance = walInstance

	threadBroker, err := broker.NewRedisThreadBroker(s.testRedis.URL)
	assert.NoError(s.T(), err)

	messageRepo := repository.NewMessageRepository(s.testDB.DB)
	gigRepo := repository.NewGigRepository(s.testDB.DB)
	s.messageService = service.NewMessageService(messageRepo, gigRepo, threadBroker, s.walInstance, service.NewGigLocks())

	s.gig = testutil.CreateTestGig(s.sender.ID, "gig with a thread")
	s.testDB.DB.Create(s.gig)
}

func (s *MessageServiceIntegrationTestSuite) TestAppendAssignsSequence() {
	first, err := s.messageService.Append(s.gig.ID, s.sender.ID, s.sender.Username, "is this still available?")
	assert.NoError(s.T(), err)
	assert.Equal(s.T(), uint64(1), first.Seq)

	second, err := s.messageService.Append(s.gig.ID, s.peer.ID, s.peer.Username, "yes it is")
	assert.NoError(s.T(), err)
	assert.Equal(s.T(), uint64(2), second.Seq)

	messages, err := s.messageService.ListByGig(s.gig.ID)
	assert.NoError(s.T(), err)
	assert.Len(s.T(), messages, 2)
	assert.Equal(s.T(), "is this still available?", messages[0].Content)
	assert.Equal(s.T(), "yes it is", messages[1].Content)
}

func (s *MessageServiceIntegrationTestSuite) TestAppendValidation() {
	msg, err := s.messageService.Append(s.gig.ID, s.sender.ID, s.sender.Username, "   ")
	assert.Nil(s.T(), msg)
	assert.True(s.T(), apperrors.IsValidation(err))

	long := make([]byte, 5001)
	for i := range long {
		long[i] = 'a'
	}
	msg, err = s.messageService.Append(s.gig.ID, s.sender.ID, s.sender.Username, string(long))
	assert.Nil(s.T(), msg)
	assert.True(s.T(), apperrors.IsValidation(err))
}

func (s *MessageServiceIntegrationTestSuite) TestAppendTargets() {
	// Missing gig
	_, err := s.messageService.Append(uuid.New(), s.sender.ID, s.sender.Username, "hello?")
	assert.True(s.T(), apperrors.IsNotFound(err))

	// Removed gigs accept nothing
	removed := testutil.CreateTestGigWithStatus(s.sender.ID, "removed", models.GigStatusRemoved)
	s.testDB.DB.Create(removed)
	_, err = s.messageService.Append(removed.ID, s.sender.ID, s.sender.Username, "hello?")
	assert.True(s.T(), apperrors.IsPermission(err))

	// Completed gigs still allow messaging
	completed := testutil.CreateTestGigWithStatus(s.sender.ID, "completed", models.GigStatusCompleted)
	s.testDB.DB.Create(completed)
	msg, err := s.messageService.Append(completed.ID, s.peer.ID, s.peer.Username, "thanks again!")
	assert.NoError(s.T(), err)
	assert.Equal(s.T(), uint64(1), msg.Seq)
}

func (s *MessageServiceIntegrationTestSuite) TestAppendJournalsToWAL() {
	_, err := s.messageService.Append(s.gig.ID, s.sender.ID, s.sender.Username, "journaled")
	assert.NoError(s.T(), err)

	entries, err := s.walInstance.GetAllEntries()
	assert.NoError(s.T(), err)
	assert.Len(s.T(), entries, 1)
	assert.Equal(s.T(), "journaled", entries[0].Content)
	assert.Equal(s.T(), s.gig.ID.String(), entries[0].GigID)
	assert.Equal(s.T(), uint64(1), entries[0].Seq)
}

func (s *MessageServiceIntegrationTestSuite) TestThreadsAreIndependent() {
	otherGig := testutil.CreateTestGig(s.peer.ID, "another gig")
	s.testDB.DB.Create(otherGig)

	_, err := s.messageService.Append(s.gig.ID, s.sender.ID, s.sender.Username, "thread one")
	assert.NoError(s.T(), err)

	msg, err := s.messageService.Append(otherGig.ID, s.sender.ID, s.sender.Username, "thread two")
	assert.NoError(s.T(), err)

	// Sequences count per gig, not globally
	assert.Equal(s.T(), uint64(1), msg.Seq)
}

// TestConcurrentAppendsTotalOrder verifies that two senders posting
// concurrently to the same gig produce one dense total order with no
// duplicated or lost positions.
func (s *MessageServiceIntegrationTestSuite) TestConcurrentAppendsTotalOrder() {
	const perSender = 25

	var wg sync.WaitGroup
	errs := make(chan error, 2*perSender)

	post := func(user *models.User) {
		defer wg.Done()
		for i := 0; i < perSender; i++ {
			if _, err := s.messageService.Append(s.gig.ID, user.ID, user.Username, "msg from "+user.Username); err != nil {
				errs <- err
			}
		}
	}

	wg.Add(2)
	go post(s.sender)
	go post(s.peer)
	wg.Wait()
	close(errs)

	for err := range errs {
		s.T().Fatalf("concurrent append failed: %v", err)
	}

	messages, err := s.messageService.ListByGig(s.gig.ID)
	assert.NoError(s.T(), err)
	assert.Len(s.T(), messages, 2*perSender)

	for i, msg := range messages {
		assert.Equal(s.T(), uint64(i+1), msg.Seq, "sequence must be dense and strictly increasing")
	}
}

func (s *MessageServiceIntegrationTestSuite) TestListByGigMissing() {
	_, err := s.messageService.ListByGig(uuid.New())
	assert.True(s.T(), apperrors.IsNotFound(err))
}

func TestMessageServiceIntegrationTestSuite(t *testing.T) {
	suite.Run(t, new(MessageServiceIntegrationTestSuite))
}
