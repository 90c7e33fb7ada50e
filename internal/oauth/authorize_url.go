package oauth

import (
	"fmt"
	"net/url"
)

// BuildAuthorizationURL constructs the provider's authorization URL for the
// given request. All parameters are percent-encoded per standard URL
// encoding rules.
//
// The redirect_uri must match the value registered with the provider byte
// for byte; that is an external precondition this function cannot check.
func BuildAuthorizationURL(authorizeEndpoint string, req AuthorizationRequest) (string, error) {
	authURL, err := url.Parse(authorizeEndpoint)
	if err != nil {
		return "", fmt.Errorf("invalid authorize endpoint: %w", err)
	}

	params := url.Values{
		"client_id":     {req.ClientID},
		"response_type": {"code"},
		"redirect_uri":  {req.RedirectURI},
		"state":         {req.State},
	}
	if scope := req.scopeString(); scope != "" {
		params.Set("scope", scope)
	}

	authURL.RawQuery = params.Encode()
	return authURL.String(), nil
}
