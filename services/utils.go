package services

import (
	"bytes"
	"context"
	"crypto/ecdsa"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"wardrobeapi/models"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"github.com/getsentry/sentry-go"
	"github.com/golang-jwt/jwt"
	"go.uber.org/zap"
	"google.golang.org/api/idtoken"
	"gorm.io/gorm"
)

type GoogleServiceProvider interface {
	ValidateIdToken(ctx context.Context, idToken string, audience string) (*idtoken.Payload, error)
	GetUserSubscriptionStatus(ctx context.Context, appUserId string) ([]byte, error)
}

type GoogleService struct{}

func (gs GoogleService) ValidateIdToken(ctx context.Context, idToken string, audience string) (*idtoken.Payload, error) {
	return idtoken.Validate(ctx, idToken, audience)
}

// GetUserSubscriptionStatus fetches the RevenueCat subscriber document.
func (gs GoogleService) GetUserSubscriptionStatus(ctx context.Context, appUserId string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("https://api.revenuecat.com/v1/subscribers/%s", appUserId), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Add("Authorization", fmt.Sprintf("Bearer %s", GetEnv("RC_API_KEY", "")))

	res, err := (&http.Client{Timeout: 15 * time.Second}).Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()
	return io.ReadAll(res.Body)
}

// PushNotifier delivers a push to every active device of a user.
type PushNotifier interface {
	Notify(ctx context.Context, userID uint, title, message string, customData map[string]string)
}

type FirebaseNotifier struct {
	App *firebase.App
	DB  *gorm.DB
}

func (n FirebaseNotifier) Notify(ctx context.Context, userID uint, title, message string, customData map[string]string) {
	SendNotification(ctx, n.App, n.DB, userID, title, message, customData)
}

func stringMapToInterfaceMap(stringMap map[string]string) map[string]interface{} {
	interfaceMap := make(map[string]interface{}, len(stringMap))
	for key, value := range stringMap {
		interfaceMap[key] = value
	}
	return interfaceMap
}

// SendNotification pushes to Android devices through FCM and to iOS devices
// directly through APNs. Users who turned notifications off are skipped.
func SendNotification(ctx context.Context, fbApp *firebase.App, db *gorm.DB, userId uint, title string, message string, customData map[string]string) {
	var user models.UserAccount
	if err := db.Select("id", "receive_notifications").First(&user, userId).Error; err != nil {
		zap.S().Warnf("[Push: %d] user lookup failed: %v", userId, err)
		return
	}
	if !user.ReceiveNotifications {
		zap.S().Debugf("[Push: %d] notifications disabled, skipping %q", userId, title)
		return
	}

	var tokens []models.UserPushToken
	if err := db.Where("user_account_id = ? and active = true", userId).Find(&tokens).Error; err != nil {
		zap.S().Errorf("[Push: %d] token lookup failed: %v", userId, err)
		return
	}
	if len(tokens) == 0 {
		return
	}

	var androidMessages []*messaging.Message
	var iOSMessages []*messaging.Message
	for _, token := range tokens {
		msg := buildPushMessage(token.Token, title, message, customData)
		if token.Platform == models.PlatformIOS {
			iOSMessages = append(iOSMessages, msg)
		} else {
			androidMessages = append(androidMessages, msg)
		}
	}

	if len(androidMessages) > 0 && fbApp != nil {
		client, err := fbApp.Messaging(ctx)
		if err != nil {
			zap.S().Errorf("[Push: %d] firebase client: %v, dropping %q", userId, err, title)
		} else if br, err := client.SendEach(ctx, androidMessages); err != nil {
			zap.S().Errorf("[Push: %d] FCM send failed: %v", userId, err)
			sentry.CaptureException(err)
		} else if br.FailureCount > 0 {
			zap.S().Warnf("[Push: %d] FCM failures: %d of %d", userId, br.FailureCount, len(androidMessages))
		}
	}

	if len(iOSMessages) > 0 {
		sender, err := NewAPNsSenderFromEnv()
		if err != nil {
			zap.S().Warnf("[Push: %d] APNs not configured: %v", userId, err)
			return
		}
		for _, err := range sender.Send(ctx, iOSMessages) {
			zap.S().Warnf("[Push: %d] APNs: %v", userId, err)
		}
	}
}

func buildPushMessage(token, title, body string, customData map[string]string) *messaging.Message {
	var iosCustomData map[string]interface{}
	if customData != nil {
		iosCustomData = stringMapToInterfaceMap(customData)
	}
	return &messaging.Message{
		Token: token,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		APNS: &messaging.APNSConfig{
			Payload: &messaging.APNSPayload{
				Aps: &messaging.Aps{
					ContentAvailable: true,
					Alert: &messaging.ApsAlert{
						Title: title,
						Body:  body,
					},
					Sound: "default",
				},
				CustomData: iosCustomData,
			},
		},
		Android: &messaging.AndroidConfig{
			Notification: &messaging.AndroidNotification{
				Priority:  messaging.AndroidNotificationPriority(messaging.PriorityMax),
				ChannelID: "wardrobe-high-priority",
			},
			Data: customData,
		},
	}
}

// APNsSender talks to the APNs HTTP/2 API with a provider token.
type APNsSender struct {
	TeamID   string
	KeyID    string
	BundleID string
	Endpoint string
	Key      *ecdsa.PrivateKey
	Client   *http.Client
}

func NewAPNsSenderFromEnv() (*APNsSender, error) {
	privateKeyPEM, err := DecodeBase64EnvPrivateKey("APPLE_PUSH_KEY_BASE64")
	if err != nil {
		return nil, err
	}
	key, err := ParseAPNsKey(privateKeyPEM)
	if err != nil {
		return nil, err
	}
	return &APNsSender{
		TeamID:   GetEnv("APPLE_TEAM_ID", ""),
		KeyID:    GetEnv("APPLE_PUSH_KEY_ID", ""),
		BundleID: GetEnv("APPLE_BUNDLE_ID", ""),
		Endpoint: GetEnv("APNS_ENDPOINT", "https://api.push.apple.com"),
		Key:      key,
		Client:   &http.Client{Timeout: 10 * time.Second},
	}, nil
}

// ParseAPNsKey reads a .p8 key.
func ParseAPNsKey(privateKeyPEM string) (*ecdsa.PrivateKey, error) {
	block, _ := pem.Decode([]byte(privateKeyPEM))
	if block == nil {
		return nil, errors.New("apns: key is not PEM encoded")
	}
	key, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("apns: failed to parse key: %w", err)
	}
	ecKey, ok := key.(*ecdsa.PrivateKey)
	if !ok {
		return nil, errors.New("apns: key is not an ECDSA key")
	}
	return ecKey, nil
}

// ProviderToken signs the ES256 JWT APNs expects in the authorization header.
func (s *APNsSender) ProviderToken(now time.Time) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodES256, jwt.MapClaims{
		"iss": s.TeamID,
		"iat": now.Unix(),
	})
	token.Header["kid"] = s.KeyID
	return token.SignedString(s.Key)
}

func apnsPayload(message *messaging.Message) ([]byte, error) {
	aps := message.APNS.Payload.Aps
	payload := map[string]interface{}{
		"aps": map[string]interface{}{
			"alert": map[string]string{
				"title": aps.Alert.Title,
				"body":  aps.Alert.Body,
			},
			"sound": aps.Sound,
		},
	}
	for key, value := range message.APNS.Payload.CustomData {
		payload[key] = value
	}
	return json.Marshal(payload)
}

func (s *APNsSender) Send(ctx context.Context, messages []*messaging.Message) []error {
	jwtToken, err := s.ProviderToken(time.Now())
	if err != nil {
		return []error{fmt.Errorf("apns: failed to sign token: %w", err)}
	}

	var errs []error
	for _, message := range messages {
		payloadBytes, err := apnsPayload(message)
		if err != nil {
			errs = append(errs, err)
			continue
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, fmt.Sprintf("%s/3/device/%s", s.Endpoint, message.Token), bytes.NewReader(payloadBytes))
		if err != nil {
			errs = append(errs, err)
			continue
		}
		req.Header.Set("Authorization", "bearer "+jwtToken)
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("apns-topic", s.BundleID)

		resp, err := s.Client.Do(req)
		if err != nil {
			sentry.CaptureException(err)
			errs = append(errs, fmt.Errorf("apns: %s: %w", message.Token, err))
			continue
		}
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			errs = append(errs, fmt.Errorf("apns: %s: status %d %s", message.Token, resp.StatusCode, body))
		}
	}
	return errs
}
