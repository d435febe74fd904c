package returnto

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const trusted = "trusted.example"

func TestValidateAccepts(t *testing.T) {
	for _, candidate := range []string{
		"https://trusted.example",
		"https://trusted.example/",
		"https://app.trusted.example/path?x=1#frag",
		"https://a.b.trusted.example:8443/deep",
		"https://APP.Trusted.Example./",
		"HTTPS://app.trusted.example/",
	} {
		t.Run(candidate, func(t *testing.T) {
			u, err := Validate(candidate, trusted)
			require.NoError(t, err)
			require.NotNil(t, u)
		})
	}
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		candidate string
		reason    Reason
	}{
		{"", ReasonMalformed},
		{"/relative/path", ReasonMalformed},
		{"//app.trusted.example/path", ReasonMalformed},
		{"https:app.trusted.example", ReasonMalformed},
		{"https://", ReasonMalformed},
		{"https://app.trusted.example/%zz", ReasonMalformed},
		{"https://evil.example\\.trusted.example/", ReasonMalformed},
		{"http://evil.example", ReasonInsecureScheme},
		{"http://app.trusted.example/path", ReasonInsecureScheme},
		{"javascript://trusted.example/%0aalert(1)", ReasonInsecureScheme},
		{"ftp://trusted.example/", ReasonInsecureScheme},
		{"https://evil.example/", ReasonUntrustedHost},
		{"https://evil-trusted.example/", ReasonUntrustedHost},
		{"https://eviltrusted.example/", ReasonUntrustedHost},
		{"https://trusted.example.evil.example/", ReasonUntrustedHost},
		{"https://trusted.example@evil.example/", ReasonUntrustedHost},
		{"https://user:pw@app.trusted.example/", ReasonUntrustedHost},
		{"https://[::1]/", ReasonUntrustedHost},
		{"https://192.0.2.1/", ReasonUntrustedHost},
	}

	for _, tt := range tests {
		t.Run(tt.candidate, func(t *testing.T) {
			u, err := Validate(tt.candidate, trusted)
			require.Error(t, err)
			assert.Nil(t, u)

			var rerr *Error
			require.True(t, errors.As(err, &rerr))
			assert.Equal(t, tt.reason, rerr.Reason)
			assert.Equal(t, tt.candidate, rerr.Candidate)
			if tt.candidate != "" {
				assert.NotContains(t, rerr.Error(), tt.candidate)
			}
		})
	}
}

func TestValidateWithoutTrustedDomainRejectsEverything(t *testing.T) {
	_, err := Validate("https://app.trusted.example/", "")
	var rerr *Error
	require.True(t, errors.As(err, &rerr))
	assert.Equal(t, ReasonUntrustedHost, rerr.Reason)
}

func TestHostWithin(t *testing.T) {
	assert.True(t, HostWithin("trusted.example", ".trusted.example"))
	assert.True(t, HostWithin("x.trusted.example", "TRUSTED.example."))
	assert.False(t, HostWithin("xtrusted.example", "trusted.example"))
	assert.False(t, HostWithin("", "trusted.example"))
}
