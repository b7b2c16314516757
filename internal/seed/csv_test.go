package seed

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"journeylens/internal/insight"
	"journeylens/internal/model"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadAccounts(t *testing.T) {
	path := writeFile(t, "accounts.csv", "\ufeffid,name,industry,status,created_at\n"+
		"1,Acme Corp,Manufacturing,active,2024-01-15T10:00:00\n"+
		"2,\"Globex, Inc\",,,not-a-date\n")

	before := time.Now().UTC()
	accounts, err := LoadAccounts(path)
	require.NoError(t, err)
	require.Len(t, accounts, 2)

	assert.Equal(t, int64(1), accounts[0].ID)
	assert.Equal(t, "Acme Corp", accounts[0].Name)
	assert.Equal(t, time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC), accounts[0].CreatedAt)

	assert.Equal(t, "Globex, Inc", accounts[1].Name)
	assert.Equal(t, model.AccountStatusActive, accounts[1].Status)
	assert.False(t, accounts[1].CreatedAt.Before(before), "bad timestamps fall back to now")
}

func TestLoadAccounts_BadID(t *testing.T) {
	path := writeFile(t, "accounts.csv", "id,name\nx,Broken\n")
	_, err := LoadAccounts(path)
	assert.ErrorContains(t, err, "line 2")
}

func TestLoadContacts(t *testing.T) {
	path := writeFile(t, "contacts.csv", "id,account_id,name,email,role,created_at\n"+
		"10,1,Jane Doe,jane@acme.test,VP Ops,2024-02-01T09:30:00Z\n")

	contacts, err := LoadContacts(path)
	require.NoError(t, err)
	require.Len(t, contacts, 1)
	assert.Equal(t, model.Contact{
		ID:        10,
		AccountID: 1,
		Name:      "Jane Doe",
		Email:     "jane@acme.test",
		Role:      "VP Ops",
		CreatedAt: time.Date(2024, 2, 1, 9, 30, 0, 0, time.UTC),
	}, *contacts[0])
}

func TestLoadInteractions(t *testing.T) {
	path := writeFile(t, "interactions.csv", "id,account_id,contact_id,channel,content,timestamp\n"+
		"100,1,10,call,\"Multi-line\ncontent, with comma\",2024-03-01 12:00:00\n"+
		"101,2,,,Just text,2024-03-02\n")

	interactions, err := LoadInteractions(path)
	require.NoError(t, err)
	require.Len(t, interactions, 2)

	first := interactions[0]
	require.NotNil(t, first.ContactID)
	assert.Equal(t, int64(10), *first.ContactID)
	assert.Equal(t, "call", first.Channel)
	assert.Equal(t, "Multi-line\ncontent, with comma", first.Content)
	assert.Equal(t, time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC), first.Timestamp)

	second := interactions[1]
	assert.Nil(t, second.ContactID)
	assert.Equal(t, model.DefaultChannel, second.Channel)
	assert.Equal(t, time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC), second.Timestamp)
}

func TestLoadExpected(t *testing.T) {
	path := writeFile(t, "expected.csv", "interaction_id,expected_intent,expected_sentiment,expected_risk_score\n"+
		"42,pricing_inquiry,neutral,0.5\n"+
		"43,,,\n")

	expected, err := LoadExpected(path)
	require.NoError(t, err)
	assert.Equal(t, map[int64]insight.Expected{
		42: {Intent: insight.IntentPricingInquiry, Sentiment: insight.SentimentNeutral, RiskScore: 0.5},
		43: {Intent: insight.IntentSupportRequest, Sentiment: insight.SentimentNeutral, RiskScore: 0.5},
	}, expected)
}

func TestLoadExpected_MissingFileIsEmpty(t *testing.T) {
	expected, err := LoadExpected(filepath.Join(t.TempDir(), "absent.csv"))
	require.NoError(t, err)
	assert.Empty(t, expected)
}

func TestLoadExpected_BadRisk(t *testing.T) {
	path := writeFile(t, "expected.csv", "interaction_id,expected_risk_score\n1,high\n")
	_, err := LoadExpected(path)
	assert.ErrorContains(t, err, "expected_risk_score")
}

func TestDemoDataParses(t *testing.T) {
	dir := filepath.Join("..", "..", "data")

	accounts, err := LoadAccounts(filepath.Join(dir, "demo_accounts.csv"))
	require.NoError(t, err)
	assert.NotEmpty(t, accounts)

	contacts, err := LoadContacts(filepath.Join(dir, "demo_contacts.csv"))
	require.NoError(t, err)
	assert.NotEmpty(t, contacts)

	interactions, err := LoadInteractions(filepath.Join(dir, "demo_interactions.csv"))
	require.NoError(t, err)
	assert.NotEmpty(t, interactions)

	expected, err := LoadExpected(filepath.Join(dir, "demo_expected_insights.csv"))
	require.NoError(t, err)
	for id := range expected {
		assert.True(t, containsInteraction(interactions, id), "expected row %d has no interaction", id)
	}
}

func containsInteraction(list []*model.Interaction, id int64) bool {
	for _, i := range list {
		if i.ID == id {
			return true
		}
	}
	return false
}
