package controllers_test

import (
	"fmt"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lms/backend/models"
)

func TestTrackProgressPersistsAfterFlush(t *testing.T) {
	env := setupEnv(t)
	producerToken, _ := env.register(t, "Pia", "pia@test.dev", "password123", "producer")
	lessonID := env.createLesson(t, producerToken, 600)
	studentToken, studentID := env.register(t, "Sam", "sam@test.dev", "password123", "student")

	resp, result := env.request(t, "POST", fmt.Sprintf("/api/lessons/%d/progress", lessonID), studentToken, map[string]interface{}{
		"watch_time_seconds": 120,
	})
	require.Equal(t, fiber.StatusAccepted, resp.StatusCode)
	assert.Equal(t, true, result["accepted"])

	// Nothing is persisted until the debounce window elapses.
	resp, result = env.request(t, "GET", fmt.Sprintf("/api/lessons/%d/progress", lessonID), studentToken, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	progressData := result["progress"].(map[string]interface{})
	assert.Equal(t, float64(0), progressData["watch_time_seconds"])

	env.reconciler.Flush(studentID, lessonID)

	resp, result = env.request(t, "GET", fmt.Sprintf("/api/lessons/%d/progress", lessonID), studentToken, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	progressData = result["progress"].(map[string]interface{})
	assert.Equal(t, float64(120), progressData["watch_time_seconds"])
	assert.Equal(t, false, progressData["completed"])
}

func TestCompletionAwardsPointsToCollaboratorOnce(t *testing.T) {
	env := setupEnv(t)
	producerToken, _ := env.register(t, "Pia", "pia@test.dev", "password123", "producer")
	lessonID := env.createLesson(t, producerToken, 600)

	companyToken, _ := env.register(t, "Acme", "owner@acme.test", "password123", "company")
	collab, status := addCollaborator(t, env, companyToken, "Nina", "nina@acme.test")
	require.Equal(t, fiber.StatusCreated, status)
	collabUserID := uint((*collab)["user_id"].(float64))
	collabToken := env.login(t, "nina@acme.test", "temporary1")

	complete := func() {
		resp, _ := env.request(t, "POST", fmt.Sprintf("/api/lessons/%d/progress", lessonID), collabToken, map[string]interface{}{
			"completed":          true,
			"watch_time_seconds": 570,
		})
		require.Equal(t, fiber.StatusAccepted, resp.StatusCode)
		env.reconciler.Flush(collabUserID, lessonID)
	}

	complete()
	complete()

	var entries []models.PointsLedgerEntry
	require.NoError(t, env.db.Find(&entries).Error)
	require.Len(t, entries, 1)
	assert.Equal(t, "lesson_completed", entries[0].ActionType)
	assert.Equal(t, uint(lessonID), entries[0].ReferenceID)

	// One completion notification as well.
	resp, result := env.request(t, "GET", "/api/notifications", collabToken, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	count := 0
	for _, n := range result["notifications"].([]interface{}) {
		if n.(map[string]interface{})["Type"] == "lesson_completed" {
			count++
		}
	}
	assert.Equal(t, 1, count)

	resp, result = env.request(t, "GET", "/api/gamification/points", collabToken, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	points := result["points"].(map[string]interface{})
	assert.Equal(t, float64(10), points["total_points"])
}

func TestCompletionByPlainStudentSkipsAward(t *testing.T) {
	env := setupEnv(t)
	producerToken, _ := env.register(t, "Pia", "pia@test.dev", "password123", "producer")
	lessonID := env.createLesson(t, producerToken, 600)
	studentToken, studentID := env.register(t, "Sam", "sam@test.dev", "password123", "student")

	resp, _ := env.request(t, "POST", fmt.Sprintf("/api/lessons/%d/progress", lessonID), studentToken, map[string]interface{}{
		"completed": true,
	})
	require.Equal(t, fiber.StatusAccepted, resp.StatusCode)
	env.reconciler.Flush(studentID, lessonID)

	// The write went through even though no points were awarded.
	resp, result := env.request(t, "GET", fmt.Sprintf("/api/lessons/%d/progress", lessonID), studentToken, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, true, result["progress"].(map[string]interface{})["completed"])

	var count int64
	require.NoError(t, env.db.Model(&models.PointsLedgerEntry{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestTrackProgressRejectsNegativeWatchTime(t *testing.T) {
	env := setupEnv(t)
	producerToken, _ := env.register(t, "Pia", "pia@test.dev", "password123", "producer")
	lessonID := env.createLesson(t, producerToken, 600)
	studentToken, _ := env.register(t, "Sam", "sam@test.dev", "password123", "student")

	resp, _ := env.request(t, "POST", fmt.Sprintf("/api/lessons/%d/progress", lessonID), studentToken, map[string]interface{}{
		"watch_time_seconds": -5,
	})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestProgressOverview(t *testing.T) {
	env := setupEnv(t)
	producerToken, _ := env.register(t, "Pia", "pia@test.dev", "password123", "producer")
	lessonID := env.createLesson(t, producerToken, 600)
	studentToken, studentID := env.register(t, "Sam", "sam@test.dev", "password123", "student")

	resp, _ := env.request(t, "POST", fmt.Sprintf("/api/lessons/%d/progress", lessonID), studentToken, map[string]interface{}{
		"completed": true,
	})
	require.Equal(t, fiber.StatusAccepted, resp.StatusCode)
	env.reconciler.Flush(studentID, lessonID)

	resp, result := env.request(t, "GET", "/api/progress/overview", studentToken, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	overview := result["overview"].([]interface{})
	require.Len(t, overview, 1)
	course := overview[0].(map[string]interface{})
	assert.Equal(t, float64(1), course["total_lessons"])
	assert.Equal(t, float64(1), course["completed_lessons"])
}

func TestGetCourseDetailsIncludesProgress(t *testing.T) {
	env := setupEnv(t)
	producerToken, _ := env.register(t, "Pia", "pia@test.dev", "password123", "producer")
	lessonID := env.createLesson(t, producerToken, 600)
	studentToken, studentID := env.register(t, "Sam", "sam@test.dev", "password123", "student")

	resp, _ := env.request(t, "POST", fmt.Sprintf("/api/lessons/%d/progress", lessonID), studentToken, map[string]interface{}{
		"watch_time_seconds": 300,
	})
	require.Equal(t, fiber.StatusAccepted, resp.StatusCode)
	env.reconciler.Flush(studentID, lessonID)

	var lesson models.Lesson
	require.NoError(t, env.db.First(&lesson, lessonID).Error)

	resp, result := env.request(t, "GET", fmt.Sprintf("/api/courses/%d", lesson.CourseID), studentToken, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	lessons := result["course"].(map[string]interface{})["lessons"].([]interface{})
	require.Len(t, lessons, 1)
	assert.Equal(t, float64(300), lessons[0].(map[string]interface{})["watch_time_seconds"])
}
