package model

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpectation_Validate(t *testing.T) {
	tests := []struct {
		name        string
		expectation Expectation
		wantField   string
	}{
		{
			name:        "respond",
			expectation: Expectation{HttpRequest: Request().WithPath("/a"), HttpResponse: Response()},
		},
		{
			name:        "forward",
			expectation: Expectation{HttpForward: Forward("localhost", 8080).WithScheme(SchemeHTTPS)},
		},
		{
			name:        "no action",
			expectation: Expectation{HttpRequest: Request()},
			wantField:   "httpResponse",
		},
		{
			name:        "both actions",
			expectation: Expectation{HttpResponse: Response(), HttpForward: Forward("localhost", 0)},
			wantField:   "httpForward",
		},
		{
			name:        "negative times",
			expectation: Expectation{HttpResponse: Response(), Times: Exactly(-1)},
			wantField:   "times.remainingTimes",
		},
		{
			name:        "bad status code",
			expectation: Expectation{HttpResponse: Response().WithStatusCode(42)},
			wantField:   "httpResponse.statusCode",
		},
		{
			name:        "unknown delay unit",
			expectation: Expectation{HttpResponse: Response().WithDelay(&Delay{TimeUnit: "FORTNIGHTS", Value: 1})},
			wantField:   "httpResponse.delay",
		},
		{
			name:        "delay overflows",
			expectation: Expectation{HttpResponse: Response().WithDelay(&Delay{TimeUnit: "DAYS", Value: math.MaxInt64 / int64(time.Hour)})},
			wantField:   "httpResponse.delay",
		},
		{
			name:        "forward without host",
			expectation: Expectation{HttpForward: Forward("", 80)},
			wantField:   "httpForward.host",
		},
		{
			name:        "forward port out of range",
			expectation: Expectation{HttpForward: Forward("localhost", 70000)},
			wantField:   "httpForward.port",
		},
		{
			name:        "forward scheme",
			expectation: Expectation{HttpForward: Forward("localhost", 80).WithScheme("FTP")},
			wantField:   "httpForward.scheme",
		},
		{
			name: "header without name",
			expectation: Expectation{
				HttpRequest:  &HttpRequest{Headers: KeyToMultiValues{{Values: []string{"x"}}}},
				HttpResponse: Response(),
			},
			wantField: "httpRequest.headers",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.expectation.Validate()
			if tt.wantField == "" {
				assert.NoError(t, err)
				return
			}
			var validationErr *ValidationError
			require.ErrorAs(t, err, &validationErr)
			assert.Equal(t, tt.wantField, validationErr.Field)
		})
	}
}

func TestDecodeExpectations(t *testing.T) {
	single, err := DecodeExpectations([]byte(`{"httpRequest": {"path": "/a"}, "httpResponse": {"body": "b"}}`))
	require.NoError(t, err)
	require.Len(t, single, 1)
	assert.Nil(t, single[0].Times, "omitted times means unlimited")

	list, err := DecodeExpectations([]byte(`[
		{"httpResponse": {}, "times": {"remainingTimes": 2}},
		{"httpForward": {"host": "localhost", "port": 8081}}
	]`))
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, 2, list[0].Times.RemainingTimes)
	assert.Equal(t, 8081, list[1].HttpForward.Port)

	for _, input := range []string{``, `[null]`, `{"httpResponse":`, `[{"httpRequest": {}}]`} {
		_, err := DecodeExpectations([]byte(input))
		var validationErr *ValidationError
		assert.ErrorAs(t, err, &validationErr, input)
	}
}

func TestVerification_Validate(t *testing.T) {
	assert.NoError(t, (&Verification{Times: VerifyAtLeast(0)}).Validate())
	assert.Error(t, (&Verification{Times: VerifyExactly(-1)}).Validate())
}

func TestVerificationTimes(t *testing.T) {
	assert.True(t, VerifyExactly(2).Satisfied(2))
	assert.False(t, VerifyExactly(2).Satisfied(3))
	assert.True(t, VerifyAtLeast(2).Satisfied(3))
	assert.False(t, VerifyAtLeast(2).Satisfied(1))
	assert.Equal(t, "exactly 2 times", VerifyExactly(2).String())
	assert.Equal(t, "at least 1 times", VerifyAtLeast(1).String())
}

func TestDelay_Duration(t *testing.T) {
	d, err := Milliseconds(250).Duration()
	require.NoError(t, err)
	assert.Equal(t, 250*time.Millisecond, d)

	d, err = (&Delay{TimeUnit: "seconds", Value: 2}).Duration()
	require.NoError(t, err)
	assert.Equal(t, 2*time.Second, d)

	d, err = (&Delay{TimeUnit: "HOURS", Value: math.MaxInt64/int64(time.Hour) + 1}).Duration()
	assert.Error(t, err)

	d, err = (&Delay{TimeUnit: "DAYS", Value: 106751}).Duration()
	require.NoError(t, err)
	assert.Equal(t, 106751*24*time.Hour, d)

	d, err = (*Delay)(nil).Duration()
	require.NoError(t, err)
	assert.Zero(t, d)
}

func TestKeyToMultiValues_ToMap(t *testing.T) {
	values := KeyToMultiValues{
		NewKeyToMultiValue("a", "1"),
		NewKeyToMultiValue("b", "x"),
		NewKeyToMultiValue("a", "2"),
	}
	assert.Equal(t, map[string][]string{"a": {"1", "2"}, "b": {"x"}}, values.ToMap())
	assert.Nil(t, KeyToMultiValues(nil).ToMap())
}
