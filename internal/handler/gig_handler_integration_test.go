package handler_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jasobih/gigboard/internal/broker"
	"github.com/jasobih/gigboard/internal/handler"
	"github.com/jasobih/gigboard/internal/middleware"
	"github.com/jasobih/gigboard/internal/models"
	"github.com/jasobih/gigboard/internal/repository"
	"github.com/jasobih/gigboard/internal/service"
	"github.com/jasobih/gigboard/internal/storage"
	"github.com/jasobih/gigboard/internal/testutil"
	"github.com/jasobih/gigboard/internal/utils"
	"github.com/jasobih/gigboard/internal/wal"
	"github.com/jasobih/gigboard/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

const (
	testJWTSecret   = "test-secret-key"
	testAdminAPIKey = "test-admin-key"
)

// GigFlowIntegrationTestSuite drives the full HTTP surface end to end:
// listings, threads, moderation and reviews behind the same middleware
// chain the server mounts.
type GigFlowIntegrationTestSuite struct {
	suite.Suite
	testDB      *testutil.TestDatabase
	testRedis   *testutil.TestRedis
	walInstance *wal.WAL
	router      *gin.Engine
	owner       *models.User
	other       *models.User
	ownerToken  string
	otherToken  string
}

func (s *GigFlowIntegrationTestSuite) SetupSuite() {
	gin.SetMode(gin.TestMode)
	logger.Init(false)

	s.testDB = testutil.SetupTestDatabase(s.T())
	s.testRedis = testutil.SetupTestRedis(s.T())

	walInstance, err := wal.NewWAL(s.T().TempDir() + "/wal_messages")
	assert.NoError(s.T(), err)
	s.walInstance = walInstance

	threadBroker, err := broker.NewRedisThreadBroker(s.testRedis.URL)
	assert.NoError(s.T(), err)

	blobStore, err := storage.NewDiskStore(s.T().TempDir())
	assert.NoError(s.T(), err)

	userRepo := repository.NewUserRepository(s.testDB.DB)
	gigRepo := repository.NewGigRepository(s.testDB.DB)
	messageRepo := repository.NewMessageRepository(s.testDB.DB)
	reviewRepo := repository.NewReviewRepository(s.testDB.DB)

	gigLocks := service.NewGigLocks()

	authService := service.NewAuthService(userRepo, testJWTSecret, 1*time.Hour, testAdminAPIKey, "development")
	gigService := service.NewGigService(gigRepo, blobStore, gigLocks, 100)
	moderationService := service.NewModerationService(gigRepo, gigLocks, 3)
	messageService := service.NewMessageService(messageRepo, gigRepo, threadBroker, walInstance, gigLocks)
	reviewService := service.NewReviewService(reviewRepo, gigRepo)

	authHandler := handler.NewAuthHandler(authService)
	gigHandler := handler.NewGigHandler(gigService, moderationService)
	messageHandler := handler.NewMessageHandler(messageService)
	reviewHandler := handler.NewReviewHandler(reviewService)
	adminHandler := handler.NewAdminHandler(moderationService)

	s.router = gin.New()
	api := s.router.Group("/api")

	api.POST("/users/register", authHandler.Register)
	api.POST("/token", authHandler.Login)
	api.GET("/gigs", gigHandler.List)
	api.POST("/gigs/:id/report", gigHandler.Report)

	protected := api.Group("")
	protected.Use(middleware.AuthMiddleware(testJWTSecret))
	{
		protected.POST("/gigs", gigHandler.Create)
		protected.GET("/gigs/:id", gigHandler.Get)
		protected.POST("/gigs/:id/complete", gigHandler.Complete)
		protected.GET("/gigs/:id/messages", messageHandler.List)
		protected.POST("/gigs/:id/messages", messageHandler.Post)
		protected.POST("/gigs/:id/reviews", reviewHandler.Submit)
		protected.GET("/gigs/:id/reviews", reviewHandler.GigAggregate)
	}

	admin := api.Group("/admin")
	admin.Use(middleware.AdminKeyMiddleware(testAdminAPIKey))
	{
		admin.GET("/flagged", adminHandler.Flagged)
		admin.POST("/gigs/:id/approve", adminHandler.Approve)
		admin.DELETE("/gigs/:id", adminHandler.Remove)
	}
}

func (s *GigFlowIntegrationTestSuite) TearDownSuite() {
	s.walInstance.Close()
	s.testDB.Teardown(s.T())
	s.testRedis.Teardown(s.T())
}

func (s *GigFlowIntegrationTestSuite) SetupTest() {
	testutil.CleanDatabase(s.T(), s.testDB.DB)

	s.owner, _ = testutil.CreateTestUser("flowowner", "flowowner@example.com", "Pass12345", models.RoleMember)
	s.other, _ = testutil.CreateTestUser("flowother", "flowother@example.com", "Pass12345", models.RoleMember)
	s.testDB.DB.Create(s.owner)
	s.testDB.DB.Create(s.other)

	s.ownerToken, _ = utils.GenerateToken(s.owner, testJWTSecret, time.Hour)
	s.otherToken, _ = utils.GenerateToken(s.other, testJWTSecret, time.Hour)
}

func (s *GigFlowIntegrationTestSuite) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var reader *bytes.Buffer
	if body != nil {
		bodyBytes, _ := json.Marshal(body)
		reader = bytes.NewBuffer(bodyBytes)
	} else {
		reader = bytes.NewBuffer(nil)
	}

	req, _ := http.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *GigFlowIntegrationTestSuite) doAdmin(method, path string, apiKey string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest(method, path, nil)
	req.Header.Set("X-API-Key", apiKey)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *GigFlowIntegrationTestSuite) createGig(token string) uuid.UUID {
	w := s.do(http.MethodPost, "/api/gigs", token, map[string]string{
		"title":    "Assemble flatpack shelves",
		"gig_type": "ODD_JOB",
		"suburb":   "Marrickville",
		"details":  "Two bookcases, tools provided",
	})
	assert.Equal(s.T(), http.StatusCreated, w.Code)

	var gig models.Gig
	err := json.Unmarshal(w.Body.Bytes(), &gig)
	assert.NoError(s.T(), err)
	return gig.ID
}

func (s *GigFlowIntegrationTestSuite) TestCreateRequiresAuth() {
	w := s.do(http.MethodPost, "/api/gigs", "", map[string]string{
		"title":    "No token",
		"gig_type": "ODD_JOB",
		"suburb":   "Newtown",
		"details":  "should bounce",
	})
	assert.Equal(s.T(), http.StatusUnauthorized, w.Code)
}

func (s *GigFlowIntegrationTestSuite) TestCreateGetList() {
	gigID := s.createGig(s.ownerToken)

	w := s.do(http.MethodGet, "/api/gigs/"+gigID.String(), s.otherToken, nil)
	assert.Equal(s.T(), http.StatusOK, w.Code)

	var gig models.Gig
	json.Unmarshal(w.Body.Bytes(), &gig)
	assert.Equal(s.T(), gigID, gig.ID)
	assert.Equal(s.T(), models.GigStatusOpen, gig.Status)

	// Listing is public
	w = s.do(http.MethodGet, "/api/gigs", "", nil)
	assert.Equal(s.T(), http.StatusOK, w.Code)

	var gigs []models.Gig
	json.Unmarshal(w.Body.Bytes(), &gigs)
	assert.Len(s.T(), gigs, 1)
}

func (s *GigFlowIntegrationTestSuite) TestCompleteFlow() {
	gigID := s.createGig(s.ownerToken)

	// Non-owner rejected
	w := s.do(http.MethodPost, "/api/gigs/"+gigID.String()+"/complete", s.otherToken, nil)
	assert.Equal(s.T(), http.StatusForbidden, w.Code)

	// Owner completes
	w = s.do(http.MethodPost, "/api/gigs/"+gigID.String()+"/complete", s.ownerToken, nil)
	assert.Equal(s.T(), http.StatusOK, w.Code)

	var gig models.Gig
	json.Unmarshal(w.Body.Bytes(), &gig)
	assert.Equal(s.T(), models.GigStatusCompleted, gig.Status)

	// Doing it twice is a conflict
	w = s.do(http.MethodPost, "/api/gigs/"+gigID.String()+"/complete", s.ownerToken, nil)
	assert.Equal(s.T(), http.StatusConflict, w.Code)
}

func (s *GigFlowIntegrationTestSuite) TestModerationFlow() {
	gigID := s.createGig(s.ownerToken)

	// Anonymous reports push the gig over the threshold
	for i := 0; i < 3; i++ {
		w := s.do(http.MethodPost, "/api/gigs/"+gigID.String()+"/report", "", nil)
		assert.Equal(s.T(), http.StatusOK, w.Code, "report %d", i+1)
	}

	// It now shows in the moderation queue
	w := s.doAdmin(http.MethodGet, "/api/admin/flagged", testAdminAPIKey)
	assert.Equal(s.T(), http.StatusOK, w.Code)

	var flagged []models.Gig
	json.Unmarshal(w.Body.Bytes(), &flagged)
	assert.Len(s.T(), flagged, 1)
	assert.Equal(s.T(), gigID, flagged[0].ID)
	assert.Equal(s.T(), 3, flagged[0].ReportCount)

	// Approve restores it
	w = s.doAdmin(http.MethodPost, "/api/admin/gigs/"+gigID.String()+"/approve", testAdminAPIKey)
	assert.Equal(s.T(), http.StatusOK, w.Code)

	var approved models.Gig
	json.Unmarshal(w.Body.Bytes(), &approved)
	assert.Equal(s.T(), models.GigStatusOpen, approved.Status)
	assert.Equal(s.T(), 0, approved.ReportCount)

	// Approving an already-open gig is a conflict
	w = s.doAdmin(http.MethodPost, "/api/admin/gigs/"+gigID.String()+"/approve", testAdminAPIKey)
	assert.Equal(s.T(), http.StatusConflict, w.Code)
}

func (s *GigFlowIntegrationTestSuite) TestAdminKeyRequired() {
	w := s.doAdmin(http.MethodGet, "/api/admin/flagged", "wrong-key")
	assert.Equal(s.T(), http.StatusUnauthorized, w.Code)

	req, _ := http.NewRequest(http.MethodGet, "/api/admin/flagged", nil)
	recorder := httptest.NewRecorder()
	s.router.ServeHTTP(recorder, req)
	assert.Equal(s.T(), http.StatusUnauthorized, recorder.Code)
}

func (s *GigFlowIntegrationTestSuite) TestRemoveCascadesOverHTTP() {
	gigID := s.createGig(s.ownerToken)

	// Seed a thread
	w := s.do(http.MethodPost, "/api/gigs/"+gigID.String()+"/messages", s.otherToken, map[string]string{
		"content": "is this still available?",
	})
	assert.Equal(s.T(), http.StatusCreated, w.Code)

	// Admin removes the gig
	w = s.doAdmin(http.MethodDelete, "/api/admin/gigs/"+gigID.String(), testAdminAPIKey)
	assert.Equal(s.T(), http.StatusOK, w.Code)

	// The gig and its thread are gone from the public surface
	w = s.do(http.MethodGet, "/api/gigs/"+gigID.String(), s.otherToken, nil)
	assert.Equal(s.T(), http.StatusNotFound, w.Code)

	w = s.do(http.MethodGet, "/api/gigs/"+gigID.String()+"/messages", s.otherToken, nil)
	assert.Equal(s.T(), http.StatusNotFound, w.Code)

	w = s.do(http.MethodGet, "/api/gigs", "", nil)
	var gigs []models.Gig
	json.Unmarshal(w.Body.Bytes(), &gigs)
	assert.Empty(s.T(), gigs)
}

func (s *GigFlowIntegrationTestSuite) TestMessageThreadOverHTTP() {
	gigID := s.createGig(s.ownerToken)

	for i, token := range []string{s.otherToken, s.ownerToken, s.otherToken} {
		w := s.do(http.MethodPost, "/api/gigs/"+gigID.String()+"/messages", token, map[string]string{
			"content": fmt.Sprintf("message %d", i+1),
		})
		assert.Equal(s.T(), http.StatusCreated, w.Code)
	}

	w := s.do(http.MethodGet, "/api/gigs/"+gigID.String()+"/messages", s.ownerToken, nil)
	assert.Equal(s.T(), http.StatusOK, w.Code)

	var messages []models.Message
	json.Unmarshal(w.Body.Bytes(), &messages)
	assert.Len(s.T(), messages, 3)
	for i, msg := range messages {
		assert.Equal(s.T(), uint64(i+1), msg.Seq)
		assert.Equal(s.T(), fmt.Sprintf("message %d", i+1), msg.Content)
	}
}

func (s *GigFlowIntegrationTestSuite) TestReviewFlow() {
	gigID := s.createGig(s.ownerToken)

	// Reviews are rejected while the gig is open
	w := s.do(http.MethodPost, "/api/gigs/"+gigID.String()+"/reviews", s.otherToken, map[string]interface{}{
		"rating":  5,
		"comment": "too early",
	})
	assert.Equal(s.T(), http.StatusConflict, w.Code)

	// Complete, then review
	w = s.do(http.MethodPost, "/api/gigs/"+gigID.String()+"/complete", s.ownerToken, nil)
	assert.Equal(s.T(), http.StatusOK, w.Code)

	w = s.do(http.MethodPost, "/api/gigs/"+gigID.String()+"/reviews", s.otherToken, map[string]interface{}{
		"rating":  5,
		"comment": "great to deal with",
	})
	assert.Equal(s.T(), http.StatusCreated, w.Code)

	var review models.Review
	json.Unmarshal(w.Body.Bytes(), &review)
	assert.Equal(s.T(), s.owner.ID, review.RevieweeID)

	// A second review from the same user is rejected
	w = s.do(http.MethodPost, "/api/gigs/"+gigID.String()+"/reviews", s.otherToken, map[string]interface{}{
		"rating":  1,
		"comment": "revised opinion",
	})
	assert.Equal(s.T(), http.StatusUnprocessableEntity, w.Code)

	// Aggregate reflects the single stored review
	w = s.do(http.MethodGet, "/api/gigs/"+gigID.String()+"/reviews", s.otherToken, nil)
	assert.Equal(s.T(), http.StatusOK, w.Code)

	var aggregate repository.ReviewAggregate
	json.Unmarshal(w.Body.Bytes(), &aggregate)
	assert.Equal(s.T(), int64(1), aggregate.Count)
	assert.Equal(s.T(), 5.0, aggregate.MeanRating)
}

func (s *GigFlowIntegrationTestSuite) TestReportUnknownGig() {
	w := s.do(http.MethodPost, "/api/gigs/"+uuid.New().String()+"/report", "", nil)
	assert.Equal(s.T(), http.StatusNotFound, w.Code)
}

func TestGigFlowIntegrationTestSuite(t *testing.T) {
	suite.Run(t, new(GigFlowIntegrationTestSuite))
}
