package api

import (
	"net/http"
	"testing"

	"github.com/commitzapp/commitz/internal/models"
	"github.com/gofiber/fiber/v2"
)

func createTestCommitment(t *testing.T, app *fiber.App, title string, commitmentType string, userID string) models.Commitment {
	t.Helper()

	request := jsonRequest(t, http.MethodPost, "/commitments", map[string]string{
		"title":  title,
		"type":   commitmentType,
		"userId": userID,
	})
	response, err := app.Test(request, -1)
	if err != nil {
		t.Fatalf("create commitment request failed: %v", err)
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusCreated {
		t.Fatalf("create commitment: expected status 201, got %d", response.StatusCode)
	}
	commitment := models.Commitment{}
	decodeJSON(t, response.Body, &commitment)
	return commitment
}

func TestCreateCollaborativeCommitmentReturnsShareCode(t *testing.T) {
	t.Parallel()
	app := newTestApp(t)

	commitment := createTestCommitment(t, app, "Morning run", models.TypeCollaborative, "alice")
	if commitment.ID == "" {
		t.Fatalf("expected server-assigned id")
	}
	if len(commitment.ShareCode) != 6 {
		t.Fatalf("shareCode = %q, want 6 characters", commitment.ShareCode)
	}
	if commitment.OwnerID != "alice" {
		t.Fatalf("userId = %q, want alice", commitment.OwnerID)
	}
}

func TestCreateCommitmentRejectsBlankTitle(t *testing.T) {
	t.Parallel()
	app := newTestApp(t)

	request := jsonRequest(t, http.MethodPost, "/commitments", map[string]string{
		"title":  "  ",
		"userId": "alice",
	})
	response, err := app.Test(request, -1)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", response.StatusCode)
	}
}

func TestListCommitmentsRequiresUserID(t *testing.T) {
	t.Parallel()
	app := newTestApp(t)

	response, err := app.Test(jsonRequest(t, http.MethodGet, "/commitments", nil), -1)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", response.StatusCode)
	}
}

func TestListCommitmentsReturnsOwnerRecords(t *testing.T) {
	t.Parallel()
	app := newTestApp(t)

	createTestCommitment(t, app, "Read", models.TypeSelf, "alice")
	createTestCommitment(t, app, "Stretch", models.TypeSelf, "bob")

	response, err := app.Test(jsonRequest(t, http.MethodGet, "/commitments?userId=alice", nil), -1)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer response.Body.Close()

	commitments := []models.Commitment{}
	decodeJSON(t, response.Body, &commitments)
	if len(commitments) != 1 || commitments[0].Title != "Read" {
		t.Fatalf("list = %#v, want only alice's commitment", commitments)
	}
}

func TestGetCommitmentUnknownIDReturns404(t *testing.T) {
	t.Parallel()
	app := newTestApp(t)

	response, err := app.Test(jsonRequest(t, http.MethodGet, "/commitments/nope", nil), -1)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", response.StatusCode)
	}
}

func TestUpdateCommitmentOverwritesTitle(t *testing.T) {
	t.Parallel()
	app := newTestApp(t)
	commitment := createTestCommitment(t, app, "Old title", models.TypeSelf, "alice")

	request := jsonRequest(t, http.MethodPatch, "/commitments/"+commitment.ID, map[string]string{"title": "New title"})
	response, err := app.Test(request, -1)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		t.Fatalf("expected status 200, got %d", response.StatusCode)
	}
	updated := models.Commitment{}
	decodeJSON(t, response.Body, &updated)
	if updated.Title != "New title" {
		t.Fatalf("title = %q, want %q", updated.Title, "New title")
	}
}

func TestDeleteCommitmentReturns204AndHidesRecord(t *testing.T) {
	t.Parallel()
	app := newTestApp(t)
	commitment := createTestCommitment(t, app, "Run", models.TypeSelf, "alice")

	request := jsonRequest(t, http.MethodDelete, "/commitments/"+commitment.ID, map[string]string{"userId": "alice"})
	response, err := app.Test(request, -1)
	if err != nil {
		t.Fatalf("delete request failed: %v", err)
	}
	response.Body.Close()
	if response.StatusCode != http.StatusNoContent {
		t.Fatalf("expected status 204, got %d", response.StatusCode)
	}

	followUp, err := app.Test(jsonRequest(t, http.MethodGet, "/commitments/"+commitment.ID, nil), -1)
	if err != nil {
		t.Fatalf("follow-up request failed: %v", err)
	}
	defer followUp.Body.Close()
	if followUp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected deleted commitment to 404, got %d", followUp.StatusCode)
	}
}

func TestDeleteCommitmentByStrangerReturns403(t *testing.T) {
	t.Parallel()
	app := newTestApp(t)
	commitment := createTestCommitment(t, app, "Run", models.TypeSelf, "alice")

	request := jsonRequest(t, http.MethodDelete, "/commitments/"+commitment.ID, map[string]string{"userId": "mallory"})
	response, err := app.Test(request, -1)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusForbidden {
		t.Fatalf("expected status 403, got %d", response.StatusCode)
	}
}
