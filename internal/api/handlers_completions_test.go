package api

import (
	"net/http"
	"testing"

	"github.com/commitzapp/commitz/internal/models"
	"github.com/gofiber/fiber/v2"
)

func toggleTestCompletion(t *testing.T, app *fiber.App, commitmentID string, date string, userID string) []models.Completion {
	t.Helper()

	request := jsonRequest(t, http.MethodPost, "/commitments/"+commitmentID+"/completions", map[string]string{
		"date":   date,
		"userId": userID,
	})
	response, err := app.Test(request, -1)
	if err != nil {
		t.Fatalf("toggle request failed: %v", err)
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		t.Fatalf("toggle: expected status 200, got %d", response.StatusCode)
	}
	completions := []models.Completion{}
	decodeJSON(t, response.Body, &completions)
	return completions
}

func TestToggleCompletionAlternatesState(t *testing.T) {
	t.Parallel()
	app := newTestApp(t)
	commitment := createTestCommitment(t, app, "Run", models.TypeCollaborative, "alice")

	first := toggleTestCompletion(t, app, commitment.ID, "2024-01-05", "alice")
	if len(first) != 1 || first[0].Deleted {
		t.Fatalf("after first toggle: %#v, want one active row", first)
	}

	second := toggleTestCompletion(t, app, commitment.ID, "2024-01-05", "alice")
	if len(second) != 1 || !second[0].Deleted {
		t.Fatalf("after second toggle: %#v, want one soft-deleted row", second)
	}

	third := toggleTestCompletion(t, app, commitment.ID, "2024-01-05", "alice")
	if len(third) != 1 || third[0].Deleted {
		t.Fatalf("after third toggle: %#v, want the row restored", third)
	}
	if third[0].ID != first[0].ID {
		t.Fatalf("restore allocated a new row id %q, want %q", third[0].ID, first[0].ID)
	}
}

func TestToggleCompletionRejectsBadInput(t *testing.T) {
	t.Parallel()
	app := newTestApp(t)
	commitment := createTestCommitment(t, app, "Run", models.TypeSelf, "alice")

	missingUser := jsonRequest(t, http.MethodPost, "/commitments/"+commitment.ID+"/completions", map[string]string{"date": "2024-01-05"})
	response, err := app.Test(missingUser, -1)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	response.Body.Close()
	if response.StatusCode != http.StatusBadRequest {
		t.Fatalf("missing userId: expected status 400, got %d", response.StatusCode)
	}

	badDate := jsonRequest(t, http.MethodPost, "/commitments/"+commitment.ID+"/completions", map[string]string{
		"date":   "05/01/2024",
		"userId": "alice",
	})
	response, err = app.Test(badDate, -1)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	response.Body.Close()
	if response.StatusCode != http.StatusBadRequest {
		t.Fatalf("bad date: expected status 400, got %d", response.StatusCode)
	}
}

func TestListCompletionsIncludesDeletedRows(t *testing.T) {
	t.Parallel()
	app := newTestApp(t)
	commitment := createTestCommitment(t, app, "Run", models.TypeCollaborative, "alice")

	toggleTestCompletion(t, app, commitment.ID, "2024-01-05", "alice")
	toggleTestCompletion(t, app, commitment.ID, "2024-01-05", "alice")
	toggleTestCompletion(t, app, commitment.ID, "2024-01-06", "bob")

	response, err := app.Test(jsonRequest(t, http.MethodGet, "/commitments/"+commitment.ID+"/completions", nil), -1)
	if err != nil {
		t.Fatalf("list request failed: %v", err)
	}
	defer response.Body.Close()

	completions := []models.Completion{}
	decodeJSON(t, response.Body, &completions)
	if len(completions) != 2 {
		t.Fatalf("list returned %d rows, want 2 (deleted row included)", len(completions))
	}

	deletedSeen := false
	for _, row := range completions {
		if row.Date == "2024-01-05" && row.Deleted {
			deletedSeen = true
		}
	}
	if !deletedSeen {
		t.Fatalf("soft-deleted row missing from list: %#v", completions)
	}
}
