package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"notevault/middleware"
	"notevault/services"
	"notevault/testutil"
	"notevault/usecase"
	"notevault/utils"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	services.InitJWT("test-secret", time.Hour)
	utils.InitValidator()
	os.Exit(m.Run())
}

// newTestServer wires the full route table against an in-memory store.
func newTestServer() (*gin.Engine, *testutil.MemStore) {
	store := testutil.NewMemStore()

	userService := &usecase.UserService{Users: store}
	noteService := &usecase.NoteService{Notes: store, Users: store}

	authHandler := NewAuthHandler(userService, time.Hour)
	noteHandler := NewNoteHandler(noteService)

	router := gin.New()
	router.POST("/signup", authHandler.Signup)
	router.POST("/login", authHandler.Login)

	protected := router.Group("/")
	protected.Use(middleware.AuthMiddleware(store))
	{
		protected.POST("/logout", authHandler.Logout)
		protected.POST("/resetpassword", authHandler.ResetPassword)
		protected.POST("/2fa/enable", authHandler.EnableTwoFactor)
		protected.POST("/2fa/verify", authHandler.VerifyTwoFactor)

		notes := protected.Group("/notes")
		{
			notes.POST("", noteHandler.CreateNote)
			notes.GET("", noteHandler.ListNotes)
			notes.DELETE("/bulk", noteHandler.DeleteNotes)
			notes.GET("/tags", noteHandler.ListTags)
			notes.GET("/tag/:tag", noteHandler.ListNotesByTag)
			notes.GET("/pinned", noteHandler.ListPinnedNotes)
			notes.GET("/favorites", noteHandler.ListFavoriteNotes)
			notes.GET("/reminders", noteHandler.ListUpcomingReminders)

			notes.GET("/:id", noteHandler.GetNote)
			notes.PUT("/:id", noteHandler.UpdateNote)
			notes.DELETE("/:id", noteHandler.DeleteNote)

			notes.POST("/:id/tags", noteHandler.AddTags)
			notes.DELETE("/:id/tags", noteHandler.RemoveTags)

			notes.PATCH("/:id/pin", noteHandler.TogglePin)
			notes.PATCH("/:id/favorite", noteHandler.ToggleFavorite)

			notes.POST("/:id/reminder", noteHandler.SetReminder)
			notes.PATCH("/:id/reminder/complete", noteHandler.CompleteReminder)

			notes.POST("/:id/versions", noteHandler.SaveVersion)
			notes.GET("/:id/versions", noteHandler.ListVersions)
			notes.POST("/:id/versions/:versionId/restore", noteHandler.RestoreVersion)

			notes.GET("/:id/export/markdown", noteHandler.ExportMarkdown)
		}
	}

	return router, store
}

func doJSON(router *gin.Engine, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("response is not JSON: %v\n%s", err, w.Body.String())
	}
	return body
}

func signupAndLogin(t *testing.T, router *gin.Engine, email string) string {
	t.Helper()
	w := doJSON(router, http.MethodPost, "/signup", "", gin.H{
		"firstname":     "Test",
		"lastname":      "User",
		"email":         email,
		"password":      "secret123",
		"contactNumber": "1234567890",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("signup failed: %d %s", w.Code, w.Body.String())
	}

	w = doJSON(router, http.MethodPost, "/login", "", gin.H{
		"email":    email,
		"password": "secret123",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("login failed: %d %s", w.Code, w.Body.String())
	}

	token, _ := decodeBody(t, w)["token"].(string)
	if token == "" {
		t.Fatal("login response carried no token")
	}
	return token
}

func createNote(t *testing.T, router *gin.Engine, token, title, body string) string {
	t.Helper()
	w := doJSON(router, http.MethodPost, "/notes", token, gin.H{"title": title, "body": body})
	if w.Code != http.StatusCreated {
		t.Fatalf("create note failed: %d %s", w.Code, w.Body.String())
	}
	note := decodeBody(t, w)["note"].(map[string]interface{})
	return note["id"].(string)
}

func TestSignupEndpoint(t *testing.T) {
	router, _ := newTestServer()

	t.Run("Success", func(t *testing.T) {
		w := doJSON(router, http.MethodPost, "/signup", "", gin.H{
			"firstname":     "Ada",
			"lastname":      "Lovelace",
			"email":         "ada@example.com",
			"password":      "secret123",
			"contactNumber": "555",
		})
		if w.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
		}
		body := decodeBody(t, w)
		user := body["data"].(map[string]interface{})["user"].(map[string]interface{})
		if _, leaked := user["password"]; leaked {
			t.Error("response leaks the password field")
		}
	})

	t.Run("DuplicateEmail", func(t *testing.T) {
		w := doJSON(router, http.MethodPost, "/signup", "", gin.H{
			"firstname":     "Ada",
			"lastname":      "Lovelace",
			"email":         "ADA@example.com",
			"password":      "secret123",
			"contactNumber": "555",
		})
		if w.Code != http.StatusConflict {
			t.Errorf("expected 409, got %d: %s", w.Code, w.Body.String())
		}
	})

	t.Run("MissingFields", func(t *testing.T) {
		w := doJSON(router, http.MethodPost, "/signup", "", gin.H{"email": "x@example.com"})
		if w.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", w.Code)
		}
	})

	t.Run("InvalidJSON", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/signup", strings.NewReader("{broken"))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		if w.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", w.Code)
		}
	})
}

func TestLoginEndpoint(t *testing.T) {
	router, _ := newTestServer()
	signupAndLogin(t, router, "user@example.com")

	t.Run("SetsSessionCookie", func(t *testing.T) {
		w := doJSON(router, http.MethodPost, "/login", "", gin.H{
			"email":    "user@example.com",
			"password": "secret123",
		})
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", w.Code)
		}

		var sessionCookie *http.Cookie
		for _, cookie := range w.Result().Cookies() {
			if cookie.Name == "token" {
				sessionCookie = cookie
			}
		}
		if sessionCookie == nil {
			t.Fatal("no session cookie set")
		}
		if !sessionCookie.HttpOnly {
			t.Error("session cookie is not HttpOnly")
		}
	})

	t.Run("WrongPassword", func(t *testing.T) {
		w := doJSON(router, http.MethodPost, "/login", "", gin.H{
			"email":    "user@example.com",
			"password": "wrong",
		})
		if w.Code != http.StatusUnauthorized {
			t.Errorf("expected 401, got %d", w.Code)
		}
	})

	t.Run("UnknownEmail", func(t *testing.T) {
		w := doJSON(router, http.MethodPost, "/login", "", gin.H{
			"email":    "nobody@example.com",
			"password": "secret123",
		})
		if w.Code != http.StatusUnauthorized {
			t.Errorf("expected 401, got %d", w.Code)
		}
	})
}

func TestLogoutEndpoint(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	services.TokenBlacklist = &services.RedisTokenBlacklist{Client: client}
	t.Cleanup(func() {
		services.TokenBlacklist = nil
		client.Close()
	})

	router, _ := newTestServer()
	token := signupAndLogin(t, router, "user@example.com")

	w := doJSON(router, http.MethodPost, "/logout", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("logout failed: %d %s", w.Code, w.Body.String())
	}

	// The same token is now rejected at the auth gate
	w = doJSON(router, http.MethodGet, "/notes", token, nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 for logged-out token, got %d", w.Code)
	}
}

func TestResetPasswordEndpoint(t *testing.T) {
	router, _ := newTestServer()
	token := signupAndLogin(t, router, "user@example.com")

	w := doJSON(router, http.MethodPost, "/resetpassword", token, gin.H{
		"currentPassword": "secret123",
		"newPassword":     "betterSecret",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("reset failed: %d %s", w.Code, w.Body.String())
	}

	w = doJSON(router, http.MethodPost, "/login", "", gin.H{
		"email":    "user@example.com",
		"password": "betterSecret",
	})
	if w.Code != http.StatusOK {
		t.Errorf("new password rejected: %d", w.Code)
	}
}

func TestNotesCRUDEndpoints(t *testing.T) {
	router, _ := newTestServer()
	token := signupAndLogin(t, router, "user@example.com")

	noteID := createNote(t, router, token, "First note", "Contents")

	t.Run("Get", func(t *testing.T) {
		w := doJSON(router, http.MethodGet, "/notes/"+noteID, token, nil)
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", w.Code)
		}
		note := decodeBody(t, w)["note"].(map[string]interface{})
		if note["title"] != "First note" {
			t.Errorf("unexpected title: %v", note["title"])
		}
	})

	t.Run("List", func(t *testing.T) {
		w := doJSON(router, http.MethodGet, "/notes?page=1&limit=5", token, nil)
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", w.Code)
		}
		body := decodeBody(t, w)
		pagination := body["pagination"].(map[string]interface{})
		if pagination["total"].(float64) != 1 {
			t.Errorf("unexpected pagination: %v", pagination)
		}
	})

	t.Run("Update", func(t *testing.T) {
		w := doJSON(router, http.MethodPut, "/notes/"+noteID, token, gin.H{"title": "Renamed"})
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
		}
	})

	t.Run("ForeignNoteIs404", func(t *testing.T) {
		otherToken := signupAndLogin(t, router, "other@example.com")
		w := doJSON(router, http.MethodGet, "/notes/"+noteID, otherToken, nil)
		if w.Code != http.StatusNotFound {
			t.Errorf("expected 404 for foreign note, got %d", w.Code)
		}
	})

	t.Run("Delete", func(t *testing.T) {
		w := doJSON(router, http.MethodDelete, "/notes/"+noteID, token, nil)
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", w.Code)
		}
		w = doJSON(router, http.MethodGet, "/notes/"+noteID, token, nil)
		if w.Code != http.StatusNotFound {
			t.Errorf("deleted note still readable: %d", w.Code)
		}
	})

	t.Run("Unauthenticated", func(t *testing.T) {
		w := doJSON(router, http.MethodGet, "/notes", "", nil)
		if w.Code != http.StatusUnauthorized {
			t.Errorf("expected 401, got %d", w.Code)
		}
	})
}

func TestBulkDeleteEndpoint(t *testing.T) {
	router, _ := newTestServer()
	token := signupAndLogin(t, router, "user@example.com")

	first := createNote(t, router, token, "One", "b")
	second := createNote(t, router, token, "Two", "b")

	w := doJSON(router, http.MethodDelete, "/notes/bulk", token, gin.H{
		"noteIds": []string{first, second, "not-a-real-id"},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	body := decodeBody(t, w)
	if body["deletedCount"].(float64) != 2 {
		t.Errorf("expected deletedCount 2, got %v", body["deletedCount"])
	}
	if body["message"] != "2 notes deleted successfully" {
		t.Errorf("unexpected message: %v", body["message"])
	}
}

func TestTagEndpoints(t *testing.T) {
	router, _ := newTestServer()
	token := signupAndLogin(t, router, "user@example.com")
	noteID := createNote(t, router, token, "Tagged", "b")

	w := doJSON(router, http.MethodPost, "/notes/"+noteID+"/tags", token, gin.H{
		"tags": []string{"Work", " work ", "Personal"},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("add tags failed: %d %s", w.Code, w.Body.String())
	}
	note := decodeBody(t, w)["note"].(map[string]interface{})
	tags := note["tags"].([]interface{})
	if len(tags) != 2 {
		t.Errorf("expected normalized tags {work, personal}, got %v", tags)
	}

	t.Run("ListByTag", func(t *testing.T) {
		w := doJSON(router, http.MethodGet, "/notes/tag/work", token, nil)
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", w.Code)
		}
		notes := decodeBody(t, w)["notes"].([]interface{})
		if len(notes) != 1 {
			t.Errorf("expected 1 note tagged work, got %d", len(notes))
		}
	})

	t.Run("TagCounts", func(t *testing.T) {
		w := doJSON(router, http.MethodGet, "/notes/tags", token, nil)
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", w.Code)
		}
		counts := decodeBody(t, w)["tags"].([]interface{})
		if len(counts) != 2 {
			t.Errorf("expected 2 tag buckets, got %v", counts)
		}
	})

	t.Run("RemoveTags", func(t *testing.T) {
		w := doJSON(router, http.MethodDelete, "/notes/"+noteID+"/tags", token, gin.H{
			"tags": []string{"WORK"},
		})
		if w.Code != http.StatusOK {
			t.Fatalf("remove tags failed: %d", w.Code)
		}
		note := decodeBody(t, w)["note"].(map[string]interface{})
		tags := note["tags"].([]interface{})
		if len(tags) != 1 {
			t.Errorf("expected only personal to remain, got %v", tags)
		}
	})
}

func TestPinAndFavoriteEndpoints(t *testing.T) {
	router, _ := newTestServer()
	token := signupAndLogin(t, router, "user@example.com")
	noteID := createNote(t, router, token, "Note", "b")

	w := doJSON(router, http.MethodPatch, "/notes/"+noteID+"/pin", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("pin failed: %d", w.Code)
	}
	if decodeBody(t, w)["message"] != "Note pinned successfully" {
		t.Errorf("unexpected message: %s", w.Body.String())
	}

	w = doJSON(router, http.MethodGet, "/notes/pinned", token, nil)
	if notes := decodeBody(t, w)["notes"].([]interface{}); len(notes) != 1 {
		t.Errorf("expected 1 pinned note, got %d", len(notes))
	}

	w = doJSON(router, http.MethodPatch, "/notes/"+noteID+"/favorite", token, nil)
	if decodeBody(t, w)["message"] != "Note added to favorites" {
		t.Errorf("unexpected message: %s", w.Body.String())
	}

	w = doJSON(router, http.MethodGet, "/notes/favorites", token, nil)
	if notes := decodeBody(t, w)["notes"].([]interface{}); len(notes) != 1 {
		t.Errorf("expected 1 favorite note, got %d", len(notes))
	}

	// Second pin toggle reverts
	doJSON(router, http.MethodPatch, "/notes/"+noteID+"/pin", token, nil)
	w = doJSON(router, http.MethodGet, "/notes/pinned", token, nil)
	if notes := decodeBody(t, w)["notes"].([]interface{}); len(notes) != 0 {
		t.Errorf("expected no pinned notes after second toggle, got %d", len(notes))
	}
}

func TestReminderEndpoints(t *testing.T) {
	router, _ := newTestServer()
	token := signupAndLogin(t, router, "user@example.com")
	noteID := createNote(t, router, token, "Call dentist", "b")

	t.Run("PastDate", func(t *testing.T) {
		w := doJSON(router, http.MethodPost, "/notes/"+noteID+"/reminder", token, gin.H{
			"reminderDate": time.Now().Add(-time.Hour).Format(time.RFC3339),
		})
		if w.Code != http.StatusBadRequest {
			t.Errorf("expected 400 for past date, got %d", w.Code)
		}
	})

	t.Run("SetAndList", func(t *testing.T) {
		w := doJSON(router, http.MethodPost, "/notes/"+noteID+"/reminder", token, gin.H{
			"reminderDate": time.Now().Add(time.Hour).Format(time.RFC3339),
		})
		if w.Code != http.StatusOK {
			t.Fatalf("set reminder failed: %d %s", w.Code, w.Body.String())
		}
		reminder := decodeBody(t, w)["reminder"].(map[string]interface{})
		if reminder["text"] != "Reminder for: Call dentist" {
			t.Errorf("unexpected default text: %v", reminder["text"])
		}

		w = doJSON(router, http.MethodGet, "/notes/reminders", token, nil)
		reminders := decodeBody(t, w)["reminders"].([]interface{})
		if len(reminders) != 1 {
			t.Errorf("expected 1 upcoming reminder, got %d", len(reminders))
		}
	})

	t.Run("Complete", func(t *testing.T) {
		w := doJSON(router, http.MethodPatch, "/notes/"+noteID+"/reminder/complete", token, nil)
		if w.Code != http.StatusOK {
			t.Fatalf("complete failed: %d", w.Code)
		}

		w = doJSON(router, http.MethodGet, "/notes/reminders", token, nil)
		reminders := decodeBody(t, w)["reminders"].([]interface{})
		if len(reminders) != 0 {
			t.Errorf("completed reminder still listed: %v", reminders)
		}
	})
}

func TestVersionEndpoints(t *testing.T) {
	router, _ := newTestServer()
	token := signupAndLogin(t, router, "user@example.com")
	noteID := createNote(t, router, token, "v1", "body v1")

	w := doJSON(router, http.MethodPost, "/notes/"+noteID+"/versions", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("save version failed: %d %s", w.Code, w.Body.String())
	}
	versionID := decodeBody(t, w)["versionId"].(string)

	doJSON(router, http.MethodPut, "/notes/"+noteID, token, gin.H{"title": "v2", "body": "body v2"})

	w = doJSON(router, http.MethodGet, "/notes/"+noteID+"/versions", token, nil)
	body := decodeBody(t, w)
	if body["noteTitle"] != "v2" {
		t.Errorf("unexpected current title: %v", body["noteTitle"])
	}
	if versions := body["versions"].([]interface{}); len(versions) != 1 {
		t.Errorf("expected 1 version, got %d", len(versions))
	}

	w = doJSON(router, http.MethodPost,
		fmt.Sprintf("/notes/%s/versions/%s/restore", noteID, versionID), token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("restore failed: %d %s", w.Code, w.Body.String())
	}
	note := decodeBody(t, w)["note"].(map[string]interface{})
	if note["title"] != "v1" {
		t.Errorf("restore did not recover old title: %v", note["title"])
	}

	t.Run("UnknownVersion", func(t *testing.T) {
		w := doJSON(router, http.MethodPost,
			"/notes/"+noteID+"/versions/bogus-version/restore", token, nil)
		if w.Code != http.StatusNotFound {
			t.Errorf("expected 404, got %d", w.Code)
		}
	})
}

func TestExportMarkdownEndpoint(t *testing.T) {
	router, _ := newTestServer()
	token := signupAndLogin(t, router, "user@example.com")
	noteID := createNote(t, router, token, "My Note", "Some *markdown* content")

	w := doJSON(router, http.MethodGet, "/notes/"+noteID+"/export/markdown", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("export failed: %d %s", w.Code, w.Body.String())
	}

	if got := w.Header().Get("Content-Disposition"); !strings.Contains(got, "My-Note.md") {
		t.Errorf("unexpected disposition: %q", got)
	}
	if got := w.Header().Get("Content-Type"); !strings.HasPrefix(got, "text/markdown") {
		t.Errorf("unexpected content type: %q", got)
	}
	if !strings.Contains(w.Body.String(), "# My Note") {
		t.Errorf("markdown body missing title heading:\n%s", w.Body.String())
	}
}
