package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const DefaultFirebaseURL = "https://identitytoolkit.googleapis.com"

// Firebase verifies credentials with the Identity Toolkit REST API.
type Firebase struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewFirebase(baseURL, apiKey string) *Firebase {
	if baseURL == "" {
		baseURL = DefaultFirebaseURL
	}
	return &Firebase{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 5 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

type signInRequest struct {
	Email             string `json:"email"`
	Password          string `json:"password"`
	ReturnSecureToken bool   `json:"returnSecureToken"`
}

type signInError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

var credentialErrors = map[string]bool{
	"EMAIL_NOT_FOUND":           true,
	"INVALID_PASSWORD":          true,
	"INVALID_LOGIN_CREDENTIALS": true,
	"USER_DISABLED":             true,
	"INVALID_EMAIL":             true,
}

func (f *Firebase) Authenticate(ctx context.Context, email, password string) error {
	body, err := json.Marshal(signInRequest{Email: email, Password: password, ReturnSecureToken: true})
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		f.baseURL+"/v1/accounts:signInWithPassword?"+url.Values{"key": {f.apiKey}}.Encode(),
		bytes.NewReader(body),
	)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusOK {
		return nil
	}

	var se signInError
	if err := json.NewDecoder(resp.Body).Decode(&se); err == nil {
		// messages look like "INVALID_PASSWORD" or "TOO_MANY_ATTEMPTS_TRY_LATER : ..."
		code := strings.TrimSpace(strings.SplitN(se.Error.Message, ":", 2)[0])
		if credentialErrors[code] {
			return ErrInvalidCredentials
		}
		if se.Error.Message != "" {
			return fmt.Errorf("sign in failed with status %d: %s", resp.StatusCode, se.Error.Message)
		}
	}
	return fmt.Errorf("sign in failed with status: %d", resp.StatusCode)
}
