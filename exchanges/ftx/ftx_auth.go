package ftx

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/gct-labs/ftxapi/common"
	"github.com/gct-labs/ftxapi/common/crypto"
)

const (
	ftxKeyHeader        = "FTX-KEY"
	ftxTimestampHeader  = "FTX-TS"
	ftxSignHeader       = "FTX-SIGN"
	ftxSubaccountHeader = "FTX-SUBACCOUNT"

	wsLoginSuffix = "websocket_login"
)

// Credentials holds an API key pair and the optional sub account the key
// acts on. The secret is never rendered by the fmt package.
type Credentials struct {
	Key        string
	Secret     string
	SubAccount string
}

// IsEmpty returns true if no key pair is set
func (c *Credentials) IsEmpty() bool {
	return c == nil || c.Key == "" || c.Secret == ""
}

// String implements fmt.Stringer without the secret
func (c Credentials) String() string {
	secret := ""
	if c.Secret != "" {
		secret = "[redacted]"
	}
	return fmt.Sprintf("Key:%s Secret:%s SubAccount:%s", c.Key, secret, c.SubAccount)
}

// GoString implements fmt.GoStringer without the secret
func (c Credentials) GoString() string {
	return "ftx.Credentials{" + c.String() + "}"
}

// sign returns the lowercase hex HMAC-SHA256 of prehash keyed by the secret
func (c *Credentials) sign(prehash string) (string, error) {
	return crypto.HMACSHA256Hex([]byte(prehash), []byte(c.Secret))
}

// BuildPrehash returns the string signed for a REST request. path is the
// canonical path the server sees and body is empty for GET requests.
func BuildPrehash(ts int64, method, path, body string) string {
	return strconv.FormatInt(ts, 10) + method + path + body
}

// BuildWsLoginPrehash returns the string signed for a websocket login
func BuildWsLoginPrehash(ts int64) string {
	return strconv.FormatInt(ts, 10) + wsLoginSuffix
}

// canonicalPath returns the escaped path plus query of u. A bare trailing "?"
// is dropped so an empty query signs as the plain path.
func canonicalPath(u *url.URL) string {
	p := u.EscapedPath()
	if u.RawQuery != "" {
		p += "?" + u.RawQuery
	}
	return strings.TrimSuffix(p, "?")
}

// authHeaders signs the request material with a snapshot of the credentials
func (f *FTX) authHeaders(method, path, body string) (map[string]string, error) {
	creds, err := f.snapshotCredentials()
	if err != nil {
		return nil, err
	}
	ts := f.now().UnixMilli()
	sig, err := creds.sign(BuildPrehash(ts, method, path, body))
	if err != nil {
		return nil, err
	}
	headers := map[string]string{
		ftxKeyHeader:       creds.Key,
		ftxTimestampHeader: strconv.FormatInt(ts, 10),
		ftxSignHeader:      sig,
	}
	if creds.SubAccount != "" {
		headers[ftxSubaccountHeader] = url.PathEscape(creds.SubAccount)
	}
	return headers, nil
}

// snapshotCredentials copies the credentials under the read lock
func (f *FTX) snapshotCredentials() (Credentials, error) {
	f.credsMtx.RLock()
	defer f.credsMtx.RUnlock()
	if f.creds.IsEmpty() {
		return Credentials{}, fmt.Errorf("%s %w", f.Name, common.ErrCredentialsMissing)
	}
	return *f.creds, nil
}

// SetCredentials replaces the API key pair and sub account
func (f *FTX) SetCredentials(key, secret, subAccount string) {
	f.credsMtx.Lock()
	f.creds = &Credentials{Key: key, Secret: secret, SubAccount: subAccount}
	f.credsMtx.Unlock()
}

// SetSubAccount switches the sub account used by subsequent signed requests
// and websocket logins. An empty name selects the main account.
func (f *FTX) SetSubAccount(subAccount string) error {
	f.credsMtx.Lock()
	defer f.credsMtx.Unlock()
	if f.creds.IsEmpty() {
		return fmt.Errorf("%s cannot change sub account: %w", f.Name, common.ErrCredentialsMissing)
	}
	f.creds.SubAccount = subAccount
	return nil
}

// GetCredentials returns a copy of the configured credentials
func (f *FTX) GetCredentials() (Credentials, error) {
	return f.snapshotCredentials()
}

// AreCredentialsSet returns whether an API key pair is configured
func (f *FTX) AreCredentialsSet() bool {
	f.credsMtx.RLock()
	defer f.credsMtx.RUnlock()
	return !f.creds.IsEmpty()
}
