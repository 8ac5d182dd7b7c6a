package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIDAcceptsStringsAndNumbers(t *testing.T) {
	var profile UserProfile
	require.NoError(t, json.Unmarshal([]byte(`{"id":42,"username":"jane"}`), &profile))
	assert.Equal(t, ID("42"), profile.ID)

	require.NoError(t, json.Unmarshal([]byte(`{"id":"u-7","username":"jane"}`), &profile))
	assert.Equal(t, ID("u-7"), profile.ID)

	out, err := json.Marshal(struct {
		A ID `json:"a"`
		B ID `json:"b"`
	}{A: "42", B: "u-7"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":42,"b":"u-7"}`, string(out))
}

func TestIDKeepsNonCanonicalNumbersAsStrings(t *testing.T) {
	var profile UserProfile
	require.NoError(t, json.Unmarshal([]byte(`{"id":"007","username":"bond"}`), &profile))
	assert.Equal(t, ID("007"), profile.ID)

	out, err := json.Marshal(profile)
	require.NoError(t, err)

	var again UserProfile
	require.NoError(t, json.Unmarshal(out, &again))
	assert.Equal(t, ID("007"), again.ID)

	for raw, want := range map[ID]string{"+5": `"+5"`, "-0": `"-0"`, "-12": `-12`, "0": `0`} {
		encoded, err := json.Marshal(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, want, string(encoded), raw)
	}
}

func TestErrorBodyMessage(t *testing.T) {
	var body ErrorBody
	require.NoError(t, json.Unmarshal([]byte(`{"detail":"Username already registered"}`), &body))
	assert.Equal(t, "Username already registered", body.Message())

	require.NoError(t, json.Unmarshal([]byte(`{"detail":[{"msg":"field required"},{"msg":"value is not a valid email"}]}`), &body))
	assert.Equal(t, "field required; value is not a valid email", body.Message())

	assert.Empty(t, ErrorBody{}.Message())
}

func TestWellnessCategoryDecode(t *testing.T) {
	category, err := ParseWellnessCategory(" Sleep ")
	require.NoError(t, err)
	assert.Equal(t, WellnessSleep, category)

	records, err := category.DecodeList([]byte(`[{"id":1,"bedtime":"2024-03-01T23:30:00.000Z","wake_time":"2024-03-02T07:00:00.000Z","sleep_quality":8}]`))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "2024-03-01T23:30:00.000Z", records[0].RecordDate())
	assert.Equal(t, 8.0, *records[0].Metrics()["sleep_quality"])
	assert.Nil(t, records[0].Metrics()["sleep_duration"])

	_, err = ParseWellnessCategory("steps")
	assert.Error(t, err)
}

func TestHydrationRecordDatePrefersDate(t *testing.T) {
	h := HydrationEntry{TimeLogged: "2024-03-01T09:15:00.000Z"}
	assert.Equal(t, "2024-03-01T09:15:00.000Z", h.RecordDate())
	h.Date = "2024-02-29"
	assert.Equal(t, "2024-02-29", h.RecordDate())
}
