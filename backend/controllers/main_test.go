package controllers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"lms/backend/config"
	"lms/backend/gamification"
	"lms/backend/middleware"
	"lms/backend/notifications"
	"lms/backend/progress"
	"lms/backend/routes"
	"lms/backend/utils"
)

type testEnv struct {
	app        *fiber.App
	db         *gorm.DB
	cfg        *config.Config
	reconciler *progress.Reconciler
}

// setupEnv builds the whole API against an in-memory database. The progress
// reconciler gets no throttle and an hour-long debounce, so tests fire
// pending writes explicitly with Flush and nothing happens on its own.
func setupEnv(t *testing.T) *testEnv {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, utils.Migrate(db))

	cfg := &config.Config{
		JWTSecret:               "testsecret",
		ServerPort:              "8080",
		LogMode:                 "dev",
		DefaultMaxCollaborators: 2,
	}

	log := utils.NopLogger()
	points := gamification.NewService(db, log)
	notify := notifications.NewService(db, log)
	reconciler := progress.NewReconciler(progress.NewGormStore(db), points, notify, log,
		progress.WithIntervals(0, time.Hour))
	t.Cleanup(reconciler.Close)

	app := fiber.New()
	app.Use(middleware.LoggingMiddleware(log))
	routes.SetupRoutes(app, db, cfg, routes.Services{
		Reconciler: reconciler,
		Points:     points,
		Notify:     notify,
	})

	return &testEnv{app: app, db: db, cfg: cfg, reconciler: reconciler}
}

func (e *testEnv) request(t *testing.T, method, path, token string, body interface{}) (*http.Response, map[string]interface{}) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewBuffer(jsonData)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", token)
	}

	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)

	var result map[string]interface{}
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &result)
	}
	return resp, result
}

// register creates an account and returns its token and user id.
func (e *testEnv) register(t *testing.T, name, email, password, role string) (string, uint) {
	t.Helper()

	resp, result := e.request(t, "POST", "/api/auth/register", "", map[string]interface{}{
		"name":     name,
		"email":    email,
		"password": password,
		"role":     role,
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	token, _ := result["token"].(string)
	require.NotEmpty(t, token)
	user := result["user"].(map[string]interface{})
	return token, uint(user["id"].(float64))
}

func (e *testEnv) login(t *testing.T, email, password string) string {
	t.Helper()

	resp, result := e.request(t, "POST", "/api/auth/login", "", map[string]interface{}{
		"email":    email,
		"password": password,
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	token, _ := result["token"].(string)
	require.NotEmpty(t, token)
	return token
}

// createLesson provisions a published course with one lesson and returns the
// lesson id.
func (e *testEnv) createLesson(t *testing.T, producerToken string, durationSeconds int) uint {
	t.Helper()

	resp, result := e.request(t, "POST", "/api/producer/courses", producerToken, map[string]interface{}{
		"title": "Go from scratch",
		"topic": "programming",
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	courseID := uint(result["course"].(map[string]interface{})["ID"].(float64))

	resp, result = e.request(t, "POST", fmt.Sprintf("/api/producer/courses/%d/lessons", courseID), producerToken, map[string]interface{}{
		"title":            "Introduction",
		"duration_seconds": durationSeconds,
		"sequence_order":   1,
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	lessonID := uint(result["lesson"].(map[string]interface{})["ID"].(float64))

	resp, _ = e.request(t, "PUT", fmt.Sprintf("/api/producer/courses/%d", courseID), producerToken, map[string]interface{}{
		"published": true,
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	return lessonID
}
