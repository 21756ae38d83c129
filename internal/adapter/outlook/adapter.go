package outlook

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	msgraphsdk "github.com/microsoftgraph/msgraph-sdk-go"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/microsoft"
)

// tokenCredential bridges our saved OAuth2 token into the Azure SDK's
// TokenCredential interface, allowing the Microsoft Graph SDK to
// authenticate requests.
type tokenCredential struct {
	adapter *OutlookAdapter
}

func (c *tokenCredential) GetToken(ctx context.Context, opts policy.TokenRequestOptions) (azcore.AccessToken, error) {
	tok, err := c.adapter.accessToken(ctx)
	if err != nil {
		return azcore.AccessToken{}, err
	}
	c.adapter.tokenMu.Lock()
	expiry := c.adapter.token.Expiry
	c.adapter.tokenMu.Unlock()
	return azcore.AccessToken{
		Token:     tok,
		ExpiresOn: expiry,
	}, nil
}

// OutlookAdapter implements core.Backend for Microsoft Outlook / Office 365
// using the official Microsoft Graph SDK.
type OutlookAdapter struct {
	clientID  string
	tenantID  string
	tokenFile string

	token   *oauth2.Token
	tokenMu sync.Mutex
	client  *msgraphsdk.GraphServiceClient
}

func NewOutlookAdapter(clientID, tenantID, tokenFile string) *OutlookAdapter {
	if tenantID == "" {
		tenantID = "common"
	}
	return &OutlookAdapter{
		clientID:  clientID,
		tenantID:  tenantID,
		tokenFile: tokenFile,
	}
}

// OAuthConfig returns the OAuth2 configuration for Microsoft identity platform.
// Used by the auth command to run the initial OAuth flow.
func (o *OutlookAdapter) OAuthConfig() *oauth2.Config {
	return &oauth2.Config{
		ClientID:    o.clientID,
		Endpoint:    microsoft.AzureADEndpoint(o.tenantID),
		RedirectURL: "http://localhost:8085/callback",
		Scopes: []string{
			// ReadWrite: enable/disable create and delete events
			"https://graph.microsoft.com/Calendars.ReadWrite",
			"https://graph.microsoft.com/User.Read",
			"offline_access",
		},
	}
}

// Login loads the saved OAuth token and initializes the Graph SDK client.
func (o *OutlookAdapter) Login(ctx context.Context) error {
	tok, err := tokenFromFile(o.tokenFile)
	if err != nil {
		return fmt.Errorf("read token file (run `oooasis auth outlook` first): %w", err)
	}

	if tok.AccessToken == "" {
		return fmt.Errorf("token file has no access token — delete %s and run `oooasis auth outlook` again", o.tokenFile)
	}

	o.token = tok

	cred := &tokenCredential{adapter: o}
	client, err := msgraphsdk.NewGraphServiceClientWithCredentials(cred, []string{
		"https://graph.microsoft.com/.default",
	})
	if err != nil {
		return fmt.Errorf("create graph client: %w", err)
	}
	o.client = client

	return nil
}

// accessToken returns a valid access token, refreshing if expired.
func (o *OutlookAdapter) accessToken(ctx context.Context) (string, error) {
	o.tokenMu.Lock()
	defer o.tokenMu.Unlock()

	if o.token.Valid() {
		return o.token.AccessToken, nil
	}

	// Token expired — refresh it
	src := o.OAuthConfig().TokenSource(ctx, o.token)
	newTok, err := src.Token()
	if err != nil {
		return "", fmt.Errorf("token expired and refresh failed (delete %s and run `oooasis auth outlook`): %w", o.tokenFile, err)
	}

	o.token = newTok

	// Persist the refreshed token
	if f, err := os.Create(o.tokenFile); err == nil {
		json.NewEncoder(f).Encode(newTok)
		f.Close()
	}

	return newTok.AccessToken, nil
}
