package handlers

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fourline-game/fourline-backend/models"
)

func TestSendChallengeHTTP_PersistsPending(t *testing.T) {
	h, store, _ := newTestHandler()
	target := store.addUser("alice", "pw")
	challenger := store.addUser("bob", "pw")

	rec := doJSON(t, h, "POST", "/sendChallenge", map[string]string{
		"userId": target, "challengerId": challenger,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	challengeID := decodeData(t, rec)["challengeId"].(string)
	ch, err := store.Challenge(context.Background(), challengeID)
	require.NoError(t, err)
	assert.Equal(t, models.ChallengePending, ch.Decision)
	assert.Equal(t, target, ch.UserID)
	assert.Equal(t, challenger, ch.ChallengerID)
}

func TestSendChallengeHTTP_UnknownUser(t *testing.T) {
	h, store, _ := newTestHandler()
	challenger := store.addUser("bob", "pw")

	rec := doJSON(t, h, "POST", "/sendChallenge", map[string]string{
		"userId": "999", "challengerId": challenger,
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestChallengeResponse(t *testing.T) {
	h, store, _ := newTestHandler()
	require.NoError(t, store.CreateChallenge(context.Background(), &models.Challenge{
		ID: "ch-1", UserID: "2", ChallengerID: "1", Decision: models.ChallengePending,
	}))

	rec := doJSON(t, h, "POST", "/challengeResponse", map[string]string{
		"challengeId": "ch-1", "reply": "accept",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, decodeData(t, rec)["accepted"])

	ch, err := store.Challenge(context.Background(), "ch-1")
	require.NoError(t, err)
	assert.Equal(t, models.ChallengeAccepted, ch.Decision)
}

func TestChallengeResponse_Decline(t *testing.T) {
	h, store, _ := newTestHandler()
	require.NoError(t, store.CreateChallenge(context.Background(), &models.Challenge{
		ID: "ch-2", UserID: "2", ChallengerID: "1", Decision: models.ChallengePending,
	}))

	rec := doJSON(t, h, "POST", "/challengeResponse", map[string]string{
		"challengeId": "ch-2", "reply": "decline",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, decodeData(t, rec)["accepted"])
}

func TestChallengeResponse_Errors(t *testing.T) {
	h, store, _ := newTestHandler()
	require.NoError(t, store.CreateChallenge(context.Background(), &models.Challenge{
		ID: "ch-3", UserID: "2", ChallengerID: "1", Decision: models.ChallengePending,
	}))

	rec := doJSON(t, h, "POST", "/challengeResponse", map[string]string{
		"challengeId": "missing", "reply": "accept",
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, h, "POST", "/challengeResponse", map[string]string{
		"challengeId": "ch-3", "reply": "maybe",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
