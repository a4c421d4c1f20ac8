package http

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/suite"

	"github.com/khoahotran/cpd-tracker/adapters/persistence"
	activityUC "github.com/khoahotran/cpd-tracker/internal/application/usecase/activity"
	authUC "github.com/khoahotran/cpd-tracker/internal/application/usecase/auth"
	backupUC "github.com/khoahotran/cpd-tracker/internal/application/usecase/backup"
	chatUC "github.com/khoahotran/cpd-tracker/internal/application/usecase/chat"
	complianceUC "github.com/khoahotran/cpd-tracker/internal/application/usecase/compliance"
	exportUC "github.com/khoahotran/cpd-tracker/internal/application/usecase/export"
	feedUC "github.com/khoahotran/cpd-tracker/internal/application/usecase/feed"
	insightUC "github.com/khoahotran/cpd-tracker/internal/application/usecase/insight"
	learningUC "github.com/khoahotran/cpd-tracker/internal/application/usecase/learning"
	profileUC "github.com/khoahotran/cpd-tracker/internal/application/usecase/profile"
	reportUC "github.com/khoahotran/cpd-tracker/internal/application/usecase/report"
	"github.com/khoahotran/cpd-tracker/internal/application/usecase/workspace"
	"github.com/khoahotran/cpd-tracker/internal/domain/competency"
	"github.com/khoahotran/cpd-tracker/internal/domain/compliance"
	"github.com/khoahotran/cpd-tracker/pkg/auth"
	"github.com/khoahotran/cpd-tracker/pkg/logger"
)

type stubModel struct {
	reply string
	err   error
	calls int
}

func (m *stubModel) GenerateChatResponse(context.Context, string) (string, error) {
	m.calls++
	return m.reply, m.err
}

func (m *stubModel) AnalyzeImage(context.Context, string, []byte, string) (string, error) {
	m.calls++
	return m.reply, m.err
}

type APITestSuite struct {
	suite.Suite
	router *gin.Engine
	model  *stubModel
	token  string
}

const (
	ownerEmail    = "owner@example.com"
	ownerPassword = "correct horse battery staple"
)

func (s *APITestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	log := logger.NewNop()

	ws := workspace.NewWorkspace(persistence.NewBucketRepository(persistence.NewMemoryStore(""), "", log), log)
	tax := competency.Default()
	req := compliance.DefaultRequirements()
	s.model = &stubModel{}

	hash, err := auth.HashPassword(ownerPassword)
	s.Require().NoError(err)
	jwtSvc := auth.NewJWTService("test-secret", time.Hour)
	login := authUC.NewLoginUseCase(authUC.Owner{Email: ownerEmail, PasswordHash: hash}, jwtSvc, log)

	metrics := NewMetrics()
	s.router = NewRouter(Handlers{
		Auth:       NewAuthHandler(login, log),
		Profile:    NewProfileHandler(profileUC.NewProfileUseCase(ws, log), learningUC.NewLearningUseCase(ws, log), log),
		Activity:   NewActivityHandler(activityUC.NewActivityUseCase(ws, nil, nil, log), log),
		Compliance: NewComplianceHandler(complianceUC.NewComplianceUseCase(ws, req, log), log),
		Transfer: NewTransferHandler(
			reportUC.NewReportUseCase(ws, tax, log),
			exportUC.NewExportUseCase(ws, req, log),
			backupUC.NewBackupUseCase(ws, nil, nil, log),
			log,
		),
		Assistant:      NewAssistantHandler(insightUC.NewInsightUseCase(s.model, log), chatUC.NewChatUseCase(s.model, ws, tax, req, log), metrics, log),
		RSS:            NewRSSHandler(feedUC.NewFeedUseCase(ws, "http://localhost:8080", log), log),
		AuthMiddleware: AuthMiddleware(jwtSvc, log),
		Metrics:        metrics,
	}, "cpd-tracker-test", log)

	rr := s.do(http.MethodPost, "/api/auth/login", gin.H{"email": ownerEmail, "password": ownerPassword})
	s.Require().Equal(http.StatusOK, rr.Code)
	var body map[string]string
	s.Require().NoError(json.Unmarshal(rr.Body.Bytes(), &body))
	s.token = body["access_token"]
}

func TestAPI(t *testing.T) {
	suite.Run(t, new(APITestSuite))
}

func (s *APITestSuite) send(req *http.Request) *httptest.ResponseRecorder {
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}
	rr := httptest.NewRecorder()
	s.router.ServeHTTP(rr, req)
	return rr
}

func (s *APITestSuite) do(method, path string, body any) *httptest.ResponseRecorder {
	var r *bytes.Reader
	switch b := body.(type) {
	case nil:
		r = bytes.NewReader(nil)
	case []byte:
		r = bytes.NewReader(b)
	default:
		raw, err := json.Marshal(b)
		s.Require().NoError(err)
		r = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	return s.send(req)
}

func (s *APITestSuite) decode(rr *httptest.ResponseRecorder, v any) {
	s.Require().NoError(json.Unmarshal(rr.Body.Bytes(), v), rr.Body.String())
}

func today() string {
	return time.Now().Format("2006-01-02")
}

func (s *APITestSuite) createCompleted(hours string, verifiable, ethics bool) string {
	rr := s.do(http.MethodPost, "/api/activities/completed", gin.H{
		"date":            today(),
		"activity":        "Audit quality webinar",
		"activityType":    "webinar",
		"developmentArea": "Assurance",
		"outcome":         "Learned how to document audit evidence properly.",
		"cpdHours":        hours,
		"isVerifiable":    verifiable,
		"isEthics":        ethics,
	})
	s.Require().Equal(http.StatusCreated, rr.Code, rr.Body.String())
	var created struct {
		ID string `json:"id"`
	}
	s.decode(rr, &created)
	return created.ID
}

func (s *APITestSuite) Test_Login_Flow() {
	token := s.token
	s.token = ""

	rr := s.do(http.MethodPost, "/api/auth/login", gin.H{"email": ownerEmail, "password": "wrongpassword"})
	s.Equal(http.StatusUnauthorized, rr.Code)

	rr = s.do(http.MethodGet, "/api/profile", nil)
	s.Equal(http.StatusUnauthorized, rr.Code)

	s.token = "not-a-jwt"
	rr = s.do(http.MethodGet, "/api/profile", nil)
	s.Equal(http.StatusUnauthorized, rr.Code)

	s.token = token
	rr = s.do(http.MethodGet, "/api/profile", nil)
	s.Equal(http.StatusOK, rr.Code)
}

func (s *APITestSuite) Test_Health_And_Metrics() {
	s.Equal(http.StatusOK, s.do(http.MethodGet, "/health", nil).Code)

	rr := s.do(http.MethodGet, "/metrics", nil)
	s.Equal(http.StatusOK, rr.Code)
	s.Contains(rr.Body.String(), "cpd_http_requests_total")
}

func (s *APITestSuite) Test_Profile_Validation_Reports_Fields() {
	rr := s.do(http.MethodPut, "/api/profile/member", gin.H{"firstName": "T", "membershipNumber": "12"})
	s.Equal(http.StatusBadRequest, rr.Code)

	var body struct {
		Success bool              `json:"success"`
		Fields  map[string]string `json:"fields"`
	}
	s.decode(rr, &body)
	s.False(body.Success)
	s.Contains(body.Fields, "firstName")
	s.Contains(body.Fields, "membershipNumber")

	rr = s.do(http.MethodPut, "/api/profile/member", gin.H{"firstName": "Thandi", "surname": "Nkosi", "membershipNumber": "SA12345"})
	s.Equal(http.StatusOK, rr.Code, rr.Body.String())
}

func (s *APITestSuite) Test_Planned_Promote_Flow() {
	rr := s.do(http.MethodPost, "/api/activities/planned", gin.H{
		"courseName":     "IFRS 17 update",
		"competencyName": "Reporting",
		"activityType":   "formal",
		"cpdHours":       3,
		"plannedDate":    today(),
		"isVerifiable":   true,
	})
	s.Require().Equal(http.StatusCreated, rr.Code, rr.Body.String())
	var planned struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	s.decode(rr, &planned)
	s.Equal("planned", planned.Status)

	rr = s.do(http.MethodPost, "/api/activities/planned/"+planned.ID+"/promote", nil)
	s.Require().Equal(http.StatusOK, rr.Code, rr.Body.String())

	var list []map[string]any
	s.decode(s.do(http.MethodGet, "/api/activities/planned", nil), &list)
	s.Empty(list)
	s.decode(s.do(http.MethodGet, "/api/activities/completed", nil), &list)
	s.Require().Len(list, 1)
	s.Equal("IFRS 17 update", list[0]["activity"])
	s.Equal("completed", list[0]["status"])

	rr = s.do(http.MethodPost, "/api/activities/planned/missing/promote", nil)
	s.Equal(http.StatusNotFound, rr.Code)
}

func (s *APITestSuite) Test_Compliance_Snapshot() {
	s.createCompleted("5", true, false)
	s.createCompleted("3", false, true)

	rr := s.do(http.MethodGet, "/api/compliance", nil)
	s.Require().Equal(http.StatusOK, rr.Code)
	var body struct {
		Snapshot compliance.Snapshot `json:"snapshot"`
	}
	s.decode(rr, &body)
	s.Equal(8.0, body.Snapshot.Total.Hours)
	s.Equal(5.0, body.Snapshot.Verifiable.Hours)
	s.Equal(3.0, body.Snapshot.Ethics.Hours)
	s.Equal(3.0, body.Snapshot.NonVerifiable)

	s.Equal(http.StatusBadRequest, s.do(http.MethodGet, "/api/compliance?year=abc", nil).Code)
	s.Equal(http.StatusOK, s.do(http.MethodGet, "/api/compliance/warnings", nil).Code)
	s.Equal(http.StatusOK, s.do(http.MethodGet, "/api/analytics", nil).Code)
}

func (s *APITestSuite) Test_Evidence_Upload_And_Remove() {
	id := s.createCompleted("1", false, false)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="files"; filename="certificate.pdf"`)
	h.Set("Content-Type", "application/pdf")
	part, err := mw.CreatePart(h)
	s.Require().NoError(err)
	_, _ = part.Write([]byte("%PDF-1.4 fake"))
	s.Require().NoError(mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/activities/completed/"+id+"/evidence", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rr := s.send(req)
	s.Require().Equal(http.StatusOK, rr.Code, rr.Body.String())

	var got struct {
		Attachments []struct {
			Name    string `json:"name"`
			DataURL string `json:"dataUrl"`
		} `json:"attachments"`
	}
	s.decode(rr, &got)
	s.Require().Len(got.Attachments, 1)
	s.Equal("certificate.pdf", got.Attachments[0].Name)
	s.True(strings.HasPrefix(got.Attachments[0].DataURL, "data:application/pdf;base64,"))

	s.Equal(http.StatusNotFound, s.do(http.MethodDelete, "/api/activities/completed/"+id+"/evidence/3", nil).Code)
	s.Equal(http.StatusBadRequest, s.do(http.MethodDelete, "/api/activities/completed/"+id+"/evidence/x", nil).Code)
	s.Equal(http.StatusOK, s.do(http.MethodDelete, "/api/activities/completed/"+id+"/evidence/0", nil).Code)
}

func (s *APITestSuite) Test_AnalyzeDocument() {
	img := base64.StdEncoding.EncodeToString([]byte("png-bytes"))

	rr := s.do(http.MethodPost, "/api/analyze-document", gin.H{"fileContentBase64": img, "fileName": "a.pdf", "mimeType": "application/pdf"})
	s.Equal(http.StatusUnsupportedMediaType, rr.Code)
	s.Zero(s.model.calls)

	s.model.reply = "Here you go:\n```json\n{\"provider\":\"SAICA\",\"activityType\":\"Webinar\",\"cpdHours\":2,\"competencyAreas\":[\"Ethics\"],\"date\":\"" + today() + "\"}\n```"
	rr = s.do(http.MethodPost, "/api/analyze-document?draft=true", gin.H{"fileContentBase64": img, "fileName": "cert.png", "mimeType": "image/png"})
	s.Require().Equal(http.StatusOK, rr.Code, rr.Body.String())
	var body struct {
		Success bool           `json:"success"`
		Data    map[string]any `json:"data"`
		Draft   map[string]any `json:"draft"`
	}
	s.decode(rr, &body)
	s.True(body.Success)
	s.Equal("SAICA", body.Data["provider"])
	s.Equal("webinar", body.Draft["activityType"])
	s.Equal(true, body.Draft["isEthics"])

	s.model.reply = "I could not read this document."
	rr = s.do(http.MethodPost, "/api/analyze-document", gin.H{"fileContentBase64": img, "fileName": "cert.jpg", "mimeType": "image/jpg"})
	s.Require().Equal(http.StatusOK, rr.Code)
	s.decode(rr, &body)
	s.Equal("I could not read this document.", body.Data["rawResponse"])

	s.model.err = fmt.Errorf("upstream down")
	rr = s.do(http.MethodPost, "/api/analyze-document", gin.H{"fileContentBase64": img, "fileName": "cert.jpg", "mimeType": "image/jpeg"})
	s.Equal(http.StatusBadGateway, rr.Code)

	rr = s.do(http.MethodGet, "/metrics", nil)
	s.Contains(rr.Body.String(), `cpd_insight_analyses_total{outcome="raw"} 1`)
}

func (s *APITestSuite) Test_Chat() {
	s.model.reply = "You are on track."
	rr := s.do(http.MethodPost, "/api/chat", gin.H{"message": "How am I doing?"})
	s.Require().Equal(http.StatusOK, rr.Code, rr.Body.String())
	var body struct {
		Success  bool   `json:"success"`
		Response string `json:"response"`
	}
	s.decode(rr, &body)
	s.True(body.Success)
	s.Equal("You are on track.", body.Response)
}

func (s *APITestSuite) Test_Exports_And_Report() {
	s.createCompleted("2", true, false)

	rr := s.do(http.MethodGet, "/api/export/csv", nil)
	s.Require().Equal(http.StatusOK, rr.Code)
	s.Contains(rr.Header().Get("Content-Disposition"), ".csv")
	lines := strings.Split(rr.Body.String(), "\n")
	s.Require().Len(lines, 5)
	s.Equal("Date,Activity,Type,Competency Area,Hours,Provider,Outcome,Evidence Files", lines[3])
	s.Equal(`"`+today()+`","Audit quality webinar","webinar","Assurance","2","","Learned how to document audit evidence properly.","0"`, lines[4])

	rr = s.do(http.MethodGet, "/api/report.pdf", nil)
	s.Require().Equal(http.StatusOK, rr.Code)
	s.Equal("application/pdf", rr.Header().Get("Content-Type"))
	s.True(bytes.HasPrefix(rr.Body.Bytes(), []byte("%PDF")))

	s.Equal(http.StatusOK, s.do(http.MethodGet, "/api/export/evidence-manifest", nil).Code)
	s.Equal(http.StatusOK, s.do(http.MethodGet, "/api/export/tax-submission", nil).Code)

	rr = s.do(http.MethodGet, "/api/feed.rss", nil)
	s.Require().Equal(http.StatusOK, rr.Code)
	s.Contains(rr.Body.String(), "Audit quality webinar")
}

func (s *APITestSuite) Test_Backup_RoundTrip_And_Rejections() {
	s.createCompleted("4", false, false)

	rr := s.do(http.MethodGet, "/api/backup", nil)
	s.Require().Equal(http.StatusOK, rr.Code)
	backup := rr.Body.Bytes()

	s.Equal(http.StatusNoContent, s.do(http.MethodDelete, "/api/storage", nil).Code)
	var list []map[string]any
	s.decode(s.do(http.MethodGet, "/api/activities/completed", nil), &list)
	s.Empty(list)

	s.Equal(http.StatusUnprocessableEntity, s.do(http.MethodPost, "/api/backup", []byte("not json")).Code)
	s.Equal(http.StatusUnprocessableEntity, s.do(http.MethodPost, "/api/backup", []byte(`{"version":"2.0","data":{}}`)).Code)

	rr = s.do(http.MethodPost, "/api/backup", backup)
	s.Require().Equal(http.StatusOK, rr.Code, rr.Body.String())
	s.decode(s.do(http.MethodGet, "/api/activities/completed", nil), &list)
	s.Len(list, 1)

	rr = s.do(http.MethodGet, "/api/storage/usage", nil)
	s.Require().Equal(http.StatusOK, rr.Code)
	var usage struct {
		Bytes int `json:"bytes"`
	}
	s.decode(rr, &usage)
	s.Positive(usage.Bytes)

	// No uploader is configured.
	s.Equal(http.StatusUnsupportedMediaType, s.do(http.MethodPost, "/api/backup/upload", nil).Code)
}
