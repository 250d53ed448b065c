package services

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"firebase.google.com/go/v4/messaging"
	"github.com/golang-jwt/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testAPNsKeyPEM(t *testing.T) (string, *ecdsa.PrivateKey) {
	t.Helper()
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)
	der, err := x509.MarshalPKCS8PrivateKey(key)
	require.NoError(t, err)
	return string(pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: der})), key
}

func TestParseAPNsKey(t *testing.T) {
	keyPEM, key := testAPNsKeyPEM(t)

	parsed, err := ParseAPNsKey(keyPEM)
	require.NoError(t, err)
	assert.True(t, key.Equal(parsed))

	_, err = ParseAPNsKey("garbage")
	assert.Error(t, err)
}

func TestAPNsProviderToken(t *testing.T) {
	_, key := testAPNsKeyPEM(t)
	sender := &APNsSender{TeamID: "TEAM123", KeyID: "KEY456", Key: key}

	signed, err := sender.ProviderToken(time.Unix(1700000000, 0))
	require.NoError(t, err)

	parsed, err := jwt.Parse(signed, func(token *jwt.Token) (interface{}, error) {
		return &key.PublicKey, nil
	})
	require.NoError(t, err)
	assert.Equal(t, "KEY456", parsed.Header["kid"])
	claims := parsed.Claims.(jwt.MapClaims)
	assert.Equal(t, "TEAM123", claims["iss"])
	assert.Equal(t, float64(1700000000), claims["iat"])
}

func TestAPNsSend(t *testing.T) {
	_, key := testAPNsKeyPEM(t)

	var paths []string
	var bodies []map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "com.example.wardrobe", r.Header.Get("apns-topic"))
		assert.True(t, strings.HasPrefix(r.Header.Get("Authorization"), "bearer "))
		paths = append(paths, r.URL.Path)
		raw, _ := io.ReadAll(r.Body)
		var body map[string]interface{}
		json.Unmarshal(raw, &body)
		bodies = append(bodies, body)
		if strings.HasSuffix(r.URL.Path, "/stale") {
			w.WriteHeader(http.StatusGone)
			w.Write([]byte(`{"reason":"Unregistered"}`))
		}
	}))
	defer server.Close()

	sender := &APNsSender{
		TeamID: "T", KeyID: "K", BundleID: "com.example.wardrobe",
		Endpoint: server.URL, Key: key, Client: server.Client(),
	}
	errs := sender.Send(t.Context(), []*messaging.Message{
		buildPushMessage("fresh", "Outfit ready", "Tap to see it", map[string]string{"outfit_generation_id": "4"}),
		buildPushMessage("stale", "Outfit ready", "Tap to see it", nil),
	})

	assert.Equal(t, []string{"/3/device/fresh", "/3/device/stale"}, paths)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Error(), "status 410")

	aps := bodies[0]["aps"].(map[string]interface{})
	assert.Equal(t, "Outfit ready", aps["alert"].(map[string]interface{})["title"])
	assert.Equal(t, "4", bodies[0]["outfit_generation_id"])
}

func TestBuildPushMessage(t *testing.T) {
	msg := buildPushMessage("tok", "Title", "Body", map[string]string{"clothing_id": "3"})
	assert.Equal(t, "tok", msg.Token)
	assert.Equal(t, "Body", msg.Notification.Body)
	assert.Equal(t, "3", msg.Android.Data["clothing_id"])
	assert.Equal(t, "3", msg.APNS.Payload.CustomData["clothing_id"])
}
