package auth

import (
    "io"
    "net/http"
    "net/http/httptest"
    "testing"

    "github.com/gin-gonic/gin"
    "github.com/sirupsen/logrus"
    "golang.org/x/crypto/bcrypt"
)

func quietLogger() *logrus.Logger {
    l := logrus.New()
    l.SetOutput(io.Discard)
    return l
}

func newProtectedRouter(t *testing.T, hash string) *gin.Engine {
    t.Helper()
    gin.SetMode(gin.TestMode)
    r := gin.New()
    r.Use(gin.Recovery())
    mw := Protect(hash, quietLogger())
    if mw == nil { t.Fatalf("expected middleware for non-empty hash") }
    r.POST("/protected", mw, func(c *gin.Context){ c.JSON(http.StatusOK, gin.H{"ok":true}) })
    return r
}

func call(r http.Handler, header, value string) int {
    req := httptest.NewRequest(http.MethodPost, "/protected", nil)
    if header != "" { req.Header.Set(header, value) }
    w := httptest.NewRecorder()
    r.ServeHTTP(w, req)
    return w.Code
}

func TestProtect_EmptyHashDisables(t *testing.T) {
    if Protect("", nil) != nil { t.Fatalf("expected nil middleware") }
    if Protect("   ", nil) != nil { t.Fatalf("expected nil middleware for blank hash") }
}

func TestProtect_TokenHeaders(t *testing.T) {
    tok, hash, err := IssueToken()
    if err != nil { t.Fatalf("issue: %v", err) }
    r := newProtectedRouter(t, hash)

    if code := call(r, "", ""); code != http.StatusUnauthorized { t.Fatalf("no token: expected 401, got %d", code) }
    if code := call(r, HeaderName, "wrong-token-value"); code != http.StatusUnauthorized { t.Fatalf("wrong token: expected 401, got %d", code) }
    if code := call(r, "Authorization", "Basic "+tok); code != http.StatusUnauthorized { t.Fatalf("basic scheme: expected 401, got %d", code) }
    if code := call(r, "Authorization", "Bearer "+tok); code != http.StatusOK { t.Fatalf("bearer: expected 200, got %d", code) }
    // second hit is served from the remembered token
    if code := call(r, HeaderName, tok); code != http.StatusOK { t.Fatalf("header: expected 200, got %d", code) }
    if code := call(r, HeaderName, tok+"x"); code != http.StatusUnauthorized { t.Fatalf("suffix: expected 401, got %d", code) }
}

func TestIssueToken_HashMatchesOnlyItsToken(t *testing.T) {
    a, hashA, err := IssueToken()
    if err != nil { t.Fatalf("issue: %v", err) }
    b, _, err := IssueToken()
    if err != nil { t.Fatalf("issue: %v", err) }
    if len(a) != 64 || a == b { t.Fatalf("bad tokens %q %q", a, b) }
    if err := bcrypt.CompareHashAndPassword([]byte(hashA), []byte(a)); err != nil { t.Fatalf("own token rejected: %v", err) }
    if err := bcrypt.CompareHashAndPassword([]byte(hashA), []byte(b)); err == nil { t.Fatalf("foreign token accepted") }
}

func TestHashToken_RejectsShort(t *testing.T) {
    if _, err := HashToken("short"); err == nil { t.Fatalf("expected error for short token") }
}
