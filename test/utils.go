package test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"time"

	"wardrobeapi/models"
	"wardrobeapi/services"

	"github.com/golang-jwt/jwt/v4"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
	"google.golang.org/api/idtoken"
	"gorm.io/gorm"
)

func JsonString(model interface{}) string {
	bytes, _ := json.Marshal(model)
	return string(bytes)
}

func NewJSONRequest(method string, target string, param interface{}) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(JsonString(param)))
	req.Header.Add("Content-Type", "application/json")
	req.Header.Add("Accept", "application/json")
	return req
}

func GenerateUserToken(userPk string) string {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   userPk,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour * 72)),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	})
	t, err := token.SignedString([]byte(os.Getenv("JWT_SECRET")))
	if err != nil {
		zap.S().Fatalf("Error when signing user token for %s. Error %s ", userPk, err)
	}
	return t
}

func NewJSONAuthRequest(method string, target string, userPk string, param interface{}) *http.Request {
	req := NewJSONRequest(method, target, param)
	req.Header.Add("Authorization", fmt.Sprintf("Bearer %s", GenerateUserToken(userPk)))
	return req
}

func NewJSONAuthRequestCustomAuth(method string, target string, authorizationString string, param interface{}) *http.Request {
	req := NewJSONRequest(method, target, param)
	req.Header.Add("Authorization", authorizationString)
	return req
}

func Int64Pointer(i int64) *int64 {
	return &i
}

func NewRefString(data string) *string {
	return &data
}

// FakeUser creates an owner with a free wardrobe account and an android device.
func FakeUser(db *gorm.DB, company *models.Company) *models.UserAccount {
	return FakeUserV2(db, company, "OurName", "email@example.com")
}

func FakeUserV2(db *gorm.DB, company *models.Company, userName string, email string) *models.UserAccount {
	if email == "" {
		email = "email@example.com"
	}
	user := &models.UserAccount{
		Name:      userName,
		Email:     email,
		GoogleID:  "12232",
		Platform:  models.PlatformIOS,
		LastIp:    "123.122.122.122",
		Status:    "FINISHED_AUTH",
		AvatarURL: "pictureurl",
	}
	db.Create(user)

	if company == nil {
		company = &models.Company{
			Name:         "My Wardrobe",
			OwnerID:      user.ID,
			Subscription: models.Free,
			Language:     string(models.EN),
			Active:       true,
		}
		db.Create(company)
	}
	membership := &models.UserCompanyRole{
		CompanyID:        company.ID,
		UserAccountID:    user.ID,
		Active:           true,
		InviteAcceptedAt: Int64Pointer(time.Now().UnixMilli()),
		Role:             models.OWNER,
	}
	db.Save(membership)
	db.Save(&models.UserPushToken{
		UserAccountID: user.ID,
		Platform:      models.PlatformAndroid,
		Token:         "cX-UZ3zwQEiPt-2GJkG2gA:APA91bGqRflaGrJrnynhRwZ442HdgUjVcO7mWMFnx6IwAdJ9RRKopvSP4QU7hbvTmk1XAp8XGvtHZLvo5JmOPTVKBbGqqvhfbZWKlXA9csEjx1hgpNvrWepU",
		Active:        true,
	})
	db.Preload("Memberships.Company").First(user, user.ID)
	return user
}

// FakeClothing stores an analyzed item for the user.
func FakeClothing(db *gorm.DB, user *models.UserAccount, category, color, warmth string) models.Clothing {
	clothing := models.Clothing{
		Name:             strings.TrimSpace(color + " " + category),
		Category:         category,
		Color:            color,
		WarmthLevel:      warmth,
		OwnerID:          user.ID,
		CompanyID:        user.Memberships[0].CompanyID,
		ImageStatus:      "uploaded",
		ImageURL:         NewRefString(fmt.Sprintf("clothes/%d/%s-%s.jpg", user.ID, color, category)),
		ProcessingStatus: models.ProcessingIdle,
	}
	db.Create(&clothing)
	return clothing
}

type GoogleServiceMock struct {
	Subscription string
}

func (gsm GoogleServiceMock) ValidateIdToken(ctx context.Context, idToken string, audience string) (*idtoken.Payload, error) {
	return &idtoken.Payload{Issuer: "Issue", Audience: "AAA", Expires: 119919191919, IssuedAt: 12312321321, Subject: "fake@example.com", Claims: map[string]interface{}{
		"email":   "fake@example.com",
		"picture": "pictureurl",
		"sub":     "123googleid",
		"name":    "Fake Person",
	}}, nil
}

func (gsm GoogleServiceMock) GetUserSubscriptionStatus(ctx context.Context, appUserId string) ([]byte, error) {
	expires := "2020-05-11T06:51:15Z"
	if gsm.Subscription == string(models.Pro) {
		expires = "2099-05-12T22:28:12Z"
	}
	data := fmt.Sprintf(`{
		"request_date": "2024-05-11T06:50:56Z",
		"subscriber": {
			"entitlements": {
				"Pro": {
					"expires_date": %q,
					"product_identifier": "wardrobe_pro",
					"purchase_date": "2024-05-11T06:49:05Z"
				}
			},
			"original_app_user_id": %q
		}
	}`, expires, appUserId)
	return []byte(data), nil
}

type AWSProviderMock struct {
	MockUrl string

	mu       sync.Mutex
	Uploaded []string
}

func (awsService *AWSProviderMock) InitPresignClient(ctx context.Context) error {
	return nil
}

func (awsService *AWSProviderMock) PresignLink(ctx context.Context, bucketName string, fileName string) (string, error) {
	return fmt.Sprintf("https://fakebucketurl.com/%s", fileName), nil
}

func (awsService *AWSProviderMock) GetPresignedR2FileReadURL(ctx context.Context, bucketName, fileKey string) (string, error) {
	if awsService.MockUrl != "" {
		return awsService.MockUrl, nil
	}
	return fmt.Sprintf("https://fakebucketurl.com/read/%s", fileKey), nil
}

func (awsService *AWSProviderMock) UploadToPresignedURL(ctx context.Context, bucketName, url string, fileContent []byte) (string, int, error) {
	awsService.mu.Lock()
	defer awsService.mu.Unlock()
	awsService.Uploaded = append(awsService.Uploaded, url)
	return url, 204, nil
}

// StylistMock answers with canned JSON and counts calls.
type StylistMock struct {
	AnalysisResponse string
	OutfitsResponse  string
	Err              error

	mu           sync.Mutex
	AnalyzeCalls int
	SuggestCalls int
	LastPrompt   string
	LastLanguage models.Language
}

const DefaultAnalysisResponse = `{
	"name": "Navy Oxford Shirt",
	"category": "top",
	"color": "Navy",
	"warmth_level": "medium",
	"tags": ["cotton", "button-down"],
	"occasion": ["work", "casual"],
	"style_aesthetic": ["Classic"],
	"season": ["spring", "fall"],
	"formality_level": "Smart Casual",
	"material_fabric": "Cotton",
	"pattern_design": "Solid",
	"texture": "Smooth",
	"breathability": "High",
	"water_resistance": "None",
	"color_intensity": "Medium",
	"layering_position": "Base Layer",
	"condition_status": "Excellent",
	"versatility_score": 8,
	"compliment_frequency": "Often",
	"confidence": 0.92
}`

func (m *StylistMock) response(text string) (*services.LLMResponse, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return &services.LLMResponse{
		Response:           text,
		InputTokenCount:    10,
		TotalTokenCount:    11,
		ThoughtsTokenCount: 12,
		OutputTokenCount:   13,
		IsTest:             true,
	}, nil
}

func (m *StylistMock) AnalyzeClothing(ctx context.Context, image []byte, mimeType string, modelName services.LLMModelName) (*services.LLMResponse, error) {
	m.mu.Lock()
	m.AnalyzeCalls++
	m.mu.Unlock()
	text := m.AnalysisResponse
	if text == "" {
		text = DefaultAnalysisResponse
	}
	return m.response(text)
}

func (m *StylistMock) SuggestOutfits(ctx context.Context, prompt string, language models.Language, modelName services.LLMModelName) (*services.LLMResponse, error) {
	m.mu.Lock()
	m.SuggestCalls++
	m.LastPrompt = prompt
	m.LastLanguage = language
	m.mu.Unlock()
	return m.response(m.OutfitsResponse)
}

// WeatherMock serves fixed weather for every city except "Atlantis".
type WeatherMock struct {
	Data *services.WeatherData
	Err  error
}

func (w WeatherMock) data(city string) (*services.WeatherData, error) {
	if w.Err != nil {
		return nil, w.Err
	}
	if strings.EqualFold(city, "Atlantis") {
		return nil, services.ErrCityNotFound
	}
	if w.Data != nil {
		return w.Data, nil
	}
	return &services.WeatherData{Temperature: 8, Condition: "Rain", Description: "Slight rain", Humidity: 81, WindSpeed: 5.4, Icon: "10d", City: "Baku, Azerbaijan"}, nil
}

func (w WeatherMock) ByCity(ctx context.Context, city string) (*services.WeatherData, error) {
	return w.data(city)
}

func (w WeatherMock) ByCoords(ctx context.Context, lat, lon float64) (*services.WeatherData, error) {
	return w.data("")
}

type Push struct {
	UserID  uint
	Title   string
	Message string
	Data    map[string]string
}

// PushRecorder keeps every notification instead of sending it.
type PushRecorder struct {
	mu     sync.Mutex
	Pushes []Push
}

func (p *PushRecorder) Notify(ctx context.Context, userID uint, title, message string, customData map[string]string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Pushes = append(p.Pushes, Push{UserID: userID, Title: title, Message: message, Data: customData})
}

func (p *PushRecorder) All() []Push {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]Push(nil), p.Pushes...)
}

type AdminRecorder struct {
	mu       sync.Mutex
	Messages []string
}

func (a *AdminRecorder) Alert(message string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.Messages = append(a.Messages, message)
}

// TaskRecorder stands in for the asynq client.
type TaskRecorder struct {
	Err error

	mu    sync.Mutex
	Tasks []*asynq.Task
}

func (r *TaskRecorder) Enqueue(task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	if r.Err != nil {
		return nil, r.Err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Tasks = append(r.Tasks, task)
	return &asynq.TaskInfo{ID: fmt.Sprintf("task-%d", len(r.Tasks)), Type: task.Type(), Queue: "generate"}, nil
}

func (r *TaskRecorder) Types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	types := make([]string, 0, len(r.Tasks))
	for _, task := range r.Tasks {
		types = append(types, task.Type())
	}
	return types
}
