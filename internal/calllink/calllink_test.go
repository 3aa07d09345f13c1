package calllink

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/priyanshsolanki/medilink-assignment3/internal/auth"
	"github.com/priyanshsolanki/medilink-assignment3/internal/user"
)

const testSecret = "test-secret"

func newTestIssuer(now time.Time) *Issuer {
	i := NewIssuer(testSecret, "https://call.example.com/consult", 15*time.Minute)
	i.now = func() time.Time { return now }
	return i
}

func testRequester() auth.Actor {
	return auth.Actor{ID: uuid.New(), Role: user.RolePatient, Name: "Ada"}
}

func TestIssueAndVerify(t *testing.T) {
	apptID := uuid.New()
	requester := testRequester()
	// Appointment starts 2030-06-02T10:00Z; issue one hour before.
	issuer := newTestIssuer(time.Date(2030, 6, 2, 9, 0, 0, 0, time.UTC))

	link, err := issuer.Issue(apptID, "2030-06-02", "10:00", requester)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(link, fmt.Sprintf("https://call.example.com/consult/%s?token=", apptID)))

	raw := link[strings.Index(link, "token=")+len("token="):]
	claims, err := issuer.Verify(raw)
	require.NoError(t, err)
	assert.Equal(t, apptID.String(), claims.AppointmentID)
	assert.Equal(t, requester.ID.String(), claims.UserID)
	assert.Equal(t, "patient", claims.Role)
}

func TestIssueWithinGrace(t *testing.T) {
	apptID := uuid.New()

	// 14 minutes after start is still inside the 15 minute grace window.
	issuer := newTestIssuer(time.Date(2030, 6, 2, 10, 14, 0, 0, time.UTC))
	link, err := issuer.Issue(apptID, "2030-06-02", "10:00", testRequester())
	require.NoError(t, err)
	assert.NotEmpty(t, link)
}

func TestIssueAfterGraceExpires(t *testing.T) {
	apptID := uuid.New()

	issuer := newTestIssuer(time.Date(2030, 6, 2, 10, 16, 0, 0, time.UTC))
	_, err := issuer.Issue(apptID, "2030-06-02", "10:00", testRequester())
	assert.ErrorIs(t, err, ErrLinkExpired)

	// The window is half-open: exactly start+grace is already expired.
	issuer = newTestIssuer(time.Date(2030, 6, 2, 10, 15, 0, 0, time.UTC))
	_, err = issuer.Issue(apptID, "2030-06-02", "10:00", testRequester())
	assert.ErrorIs(t, err, ErrLinkExpired)
}

func TestIssueBadInput(t *testing.T) {
	issuer := newTestIssuer(time.Date(2030, 6, 2, 9, 0, 0, 0, time.UTC))
	_, err := issuer.Issue(uuid.New(), "June 2", "10:00", testRequester())
	assert.Error(t, err)
}

func TestVerifyRejectsForeignSignature(t *testing.T) {
	apptID := uuid.New()
	now := time.Date(2030, 6, 2, 9, 0, 0, 0, time.UTC)

	other := NewIssuer("different-secret", "https://call.example.com/consult", 15*time.Minute)
	other.now = func() time.Time { return now }

	link, err := other.Issue(apptID, "2030-06-02", "10:00", testRequester())
	require.NoError(t, err)
	raw := link[strings.Index(link, "token=")+len("token="):]

	issuer := newTestIssuer(now)
	_, err = issuer.Verify(raw)
	assert.ErrorIs(t, err, ErrBadLink)
}

func TestVerifyGarbage(t *testing.T) {
	issuer := newTestIssuer(time.Now())
	_, err := issuer.Verify("not-a-jwt")
	assert.ErrorIs(t, err, ErrBadLink)
}
