package verification_test

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"time"

	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/frahmantamala/staff-portal/internal/auth"
	tokenDatamodel "github.com/frahmantamala/staff-portal/internal/core/datamodel/token"
	userDatamodel "github.com/frahmantamala/staff-portal/internal/core/datamodel/user"
	tokenPostgres "github.com/frahmantamala/staff-portal/internal/token/postgres"
	"github.com/frahmantamala/staff-portal/internal/transport/rest"
	"github.com/frahmantamala/staff-portal/internal/upload"
	"github.com/frahmantamala/staff-portal/internal/user"
	userPostgres "github.com/frahmantamala/staff-portal/internal/user/postgres"
	"github.com/frahmantamala/staff-portal/internal/verification"
	"github.com/frahmantamala/staff-portal/pkg/logger"
)

var _ = Describe("Account Lifecycle", func() {
	var (
		router *chi.Mux
		mail   *captureMailer
	)

	registerForm := func(fields map[string]string) (*bytes.Buffer, string) {
		body := &bytes.Buffer{}
		writer := multipart.NewWriter(body)
		for k, v := range fields {
			Expect(writer.WriteField(k, v)).To(Succeed())
		}
		Expect(writer.Close()).To(Succeed())
		return body, writer.FormDataContentType()
	}

	doRegister := func(path string, fields map[string]string, bearer string) *httptest.ResponseRecorder {
		body, contentType := registerForm(fields)
		req := httptest.NewRequest(http.MethodPost, path, body)
		req.Header.Set("Content-Type", contentType)
		if bearer != "" {
			req.Header.Set("Authorization", "Bearer "+bearer)
		}
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	doJSON := func(method, path string, payload interface{}, bearer string) *httptest.ResponseRecorder {
		var body bytes.Buffer
		if payload != nil {
			Expect(json.NewEncoder(&body).Encode(payload)).To(Succeed())
		}
		req := httptest.NewRequest(method, path, &body)
		req.Header.Set("Content-Type", "application/json")
		if bearer != "" {
			req.Header.Set("Authorization", "Bearer "+bearer)
		}
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	login := func(email, password string) *httptest.ResponseRecorder {
		return doJSON(http.MethodPost, "/api/v1/login", map[string]string{
			"email":    email,
			"password": password,
		}, "")
	}

	tokenFromLogin := func(rec *httptest.ResponseRecorder) string {
		var resp struct {
			Token string `json:"token"`
		}
		Expect(json.Unmarshal(rec.Body.Bytes(), &resp)).To(Succeed())
		Expect(resp.Token).NotTo(BeEmpty())
		return resp.Token
	}

	budiForm := map[string]string{
		"name":     "Budi",
		"email":    "budi@mail.com",
		"password": "secret123",
		"role":     "Employee",
	}

	BeforeEach(func() {
		logger.Init("development")

		db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
			Logger: gormLogger.Default.LogMode(gormLogger.Silent),
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(db.AutoMigrate(&userDatamodel.User{}, &tokenDatamodel.Token{})).To(Succeed())

		uploadDir, err := os.MkdirTemp("", "uploads")
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(os.RemoveAll, uploadDir)

		uploadStore, err := upload.NewStore(uploadDir)
		Expect(err).NotTo(HaveOccurred())

		lg := logger.LoggerWrapper()
		userRepo := userPostgres.NewUserRepository(db)
		tokenRepo := tokenPostgres.NewTokenRepository(db)
		mail = &captureMailer{}

		userService := user.NewService(userRepo, tokenRepo, bcrypt.MinCost, lg)
		tokenGen := auth.NewJWTTokenGenerator("integration-test-secret-0123456789ab", time.Hour)
		authService := auth.NewService(userService, tokenRepo, tokenGen, lg)
		verificationService := verification.NewService(userService, tokenRepo, mail, baseURL, frontendURL, time.Hour, lg)

		// seed the bootstrap admin
		hash, err := bcrypt.GenerateFromPassword([]byte("adminpass"), bcrypt.MinCost)
		Expect(err).NotTo(HaveOccurred())
		Expect(userRepo.Create(&userDatamodel.User{
			ID:           "admin-1",
			Name:         "Administrator",
			Email:        "admin@mail.com",
			PasswordHash: string(hash),
			Role:         userDatamodel.RoleAdmin,
			IsVerified:   true,
		})).To(Succeed())

		sqlDB, err := db.DB()
		Expect(err).NotTo(HaveOccurred())

		router = chi.NewRouter()
		rest.RegisterAllRoutes(
			router,
			sqlDB,
			auth.NewHandler(authService),
			user.NewHandler(userService, uploadStore),
			verification.NewHandler(verificationService, uploadStore),
			uploadDir,
			frontendURL,
			lg,
		)
	})

	Describe("register, confirm and log in", func() {
		It("should walk the whole verification flow", func() {
			// Given a fresh registration
			rec := doRegister("/api/v1/register", budiForm, "")
			Expect(rec.Code).To(Equal(http.StatusCreated))
			Expect(rec.Body.String()).To(ContainSubstring("verification email sent"))
			Expect(mail.sent).To(HaveLen(1))

			// When logging in before confirming
			rec = login("budi@mail.com", "secret123")
			// Then the login is refused
			Expect(rec.Code).To(Equal(http.StatusForbidden))

			// When following the emailed confirmation link
			link := mail.sent[0].Body
			start := strings.Index(link, baseURL)
			Expect(start).To(BeNumerically(">=", 0))
			end := strings.IndexAny(link[start:], `"<`)
			confirmURL := strings.TrimPrefix(link[start:start+end], baseURL)

			req := httptest.NewRequest(http.MethodGet, confirmURL, nil)
			confirmRec := httptest.NewRecorder()
			router.ServeHTTP(confirmRec, req)

			// Then the browser is redirected to the role login page
			Expect(confirmRec.Code).To(Equal(http.StatusFound))
			Expect(confirmRec.Header().Get("Location")).To(Equal(frontendURL + "/Employee/login"))

			// And the login now succeeds
			rec = login("budi@mail.com", "secret123")
			Expect(rec.Code).To(Equal(http.StatusOK))
			token := tokenFromLogin(rec)

			// And the dashboard greets the user by name and role
			rec = doJSON(http.MethodGet, "/api/v1/dashboard", nil, token)
			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(rec.Body.String()).To(ContainSubstring("Welcome Budi"))
			Expect(rec.Body.String()).To(ContainSubstring("Employee"))
		})

		It("should reject a duplicate registration", func() {
			Expect(doRegister("/api/v1/register", budiForm, "").Code).To(Equal(http.StatusCreated))
			Expect(doRegister("/api/v1/register", budiForm, "").Code).To(Equal(http.StatusConflict))
		})

		It("should reject an invalid role", func() {
			form := map[string]string{
				"name":     "Budi",
				"email":    "budi@mail.com",
				"password": "secret123",
				"role":     "Superuser",
			}
			Expect(doRegister("/api/v1/register", form, "").Code).To(Equal(http.StatusBadRequest))
		})
	})

	Describe("password reset", func() {
		BeforeEach(func() {
			Expect(doRegister("/api/v1/register", budiForm, "").Code).To(Equal(http.StatusCreated))

			link := mail.sent[0].Body
			start := strings.Index(link, baseURL)
			end := strings.IndexAny(link[start:], `"<`)
			confirmURL := strings.TrimPrefix(link[start:start+end], baseURL)
			req := httptest.NewRequest(http.MethodGet, confirmURL, nil)
			router.ServeHTTP(httptest.NewRecorder(), req)
		})

		It("should reset the password through the emailed token", func() {
			rec := doJSON(http.MethodPost, "/api/v1/forgot-password", map[string]string{"email": "budi@mail.com"}, "")
			Expect(rec.Code).To(Equal(http.StatusOK))

			body := mail.sent[len(mail.sent)-1].Body
			prefix := frontendURL + "/reset-password/"
			idx := strings.Index(body, prefix)
			Expect(idx).To(BeNumerically(">=", 0))
			tail := body[idx+len(prefix):]
			raw := tail[:strings.Index(tail, "/")]

			rec = doJSON(http.MethodPut, "/api/v1/reset-password/"+raw, map[string]string{"new_password": "newsecret"}, "")
			Expect(rec.Code).To(Equal(http.StatusOK))

			Expect(login("budi@mail.com", "secret123").Code).To(Equal(http.StatusUnauthorized))
			Expect(login("budi@mail.com", "newsecret").Code).To(Equal(http.StatusOK))
		})

		It("should reject a replayed reset token", func() {
			rec := doJSON(http.MethodPost, "/api/v1/forgot-password", map[string]string{"email": "budi@mail.com"}, "")
			Expect(rec.Code).To(Equal(http.StatusOK))

			body := mail.sent[len(mail.sent)-1].Body
			prefix := frontendURL + "/reset-password/"
			idx := strings.Index(body, prefix)
			Expect(idx).To(BeNumerically(">=", 0))
			tail := body[idx+len(prefix):]
			raw := tail[:strings.Index(tail, "/")]

			rec = doJSON(http.MethodPut, "/api/v1/reset-password/"+raw, map[string]string{"new_password": "newsecret"}, "")
			Expect(rec.Code).To(Equal(http.StatusOK))

			// the first reset purged the digest row, so the same link is dead
			rec = doJSON(http.MethodPut, "/api/v1/reset-password/"+raw, map[string]string{"new_password": "othersecret"}, "")
			Expect(rec.Code).To(Equal(http.StatusBadRequest))
			Expect(rec.Body.String()).To(ContainSubstring("INVALID_OR_EXPIRED_TOKEN"))

			Expect(login("budi@mail.com", "othersecret").Code).To(Equal(http.StatusUnauthorized))
			Expect(login("budi@mail.com", "newsecret").Code).To(Equal(http.StatusOK))
		})

		It("should reject a bogus reset token", func() {
			rec := doJSON(http.MethodPut, "/api/v1/reset-password/bogus", map[string]string{"new_password": "newsecret"}, "")
			Expect(rec.Code).To(Equal(http.StatusBadRequest))
		})

		It("should return not found for an unknown email", func() {
			rec := doJSON(http.MethodPost, "/api/v1/forgot-password", map[string]string{"email": "nobody@mail.com"}, "")
			Expect(rec.Code).To(Equal(http.StatusNotFound))
		})
	})

	Describe("admin registration", func() {
		It("should let an admin create a verified-path account directly", func() {
			rec := login("admin@mail.com", "adminpass")
			Expect(rec.Code).To(Equal(http.StatusOK))
			adminToken := tokenFromLogin(rec)

			form := map[string]string{
				"name":     "Siti",
				"email":    "siti@mail.com",
				"password": "secret123",
				"role":     "Manager",
			}
			rec = doRegister("/api/v1/admin/register", form, adminToken)
			Expect(rec.Code).To(Equal(http.StatusCreated))
			Expect(rec.Body.String()).To(ContainSubstring("Manager registered successfully"))
		})

		It("should refuse a non-admin caller", func() {
			Expect(doRegister("/api/v1/register", budiForm, "").Code).To(Equal(http.StatusCreated))

			link := mail.sent[0].Body
			start := strings.Index(link, baseURL)
			end := strings.IndexAny(link[start:], `"<`)
			confirmURL := strings.TrimPrefix(link[start:start+end], baseURL)
			req := httptest.NewRequest(http.MethodGet, confirmURL, nil)
			router.ServeHTTP(httptest.NewRecorder(), req)

			rec := login("budi@mail.com", "secret123")
			Expect(rec.Code).To(Equal(http.StatusOK))
			budiToken := tokenFromLogin(rec)

			form := map[string]string{
				"name":     "Siti",
				"email":    "siti@mail.com",
				"password": "secret123",
				"role":     "Manager",
			}
			Expect(doRegister("/api/v1/admin/register", form, budiToken).Code).To(Equal(http.StatusForbidden))
		})

		It("should refuse an unauthenticated caller", func() {
			form := map[string]string{
				"name":     "Siti",
				"email":    "siti@mail.com",
				"password": "secret123",
				"role":     "Manager",
			}
			Expect(doRegister("/api/v1/admin/register", form, "").Code).To(Equal(http.StatusUnauthorized))
		})
	})

	Describe("logout", func() {
		It("should delete pending tokens for the session owner", func() {
			rec := login("admin@mail.com", "adminpass")
			Expect(rec.Code).To(Equal(http.StatusOK))
			adminToken := tokenFromLogin(rec)

			rec = doJSON(http.MethodPost, "/api/v1/logout", nil, adminToken)
			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(rec.Body.String()).To(ContainSubstring("logged out successfully"))
		})

		It("should refuse an unauthenticated caller", func() {
			rec := doJSON(http.MethodPost, "/api/v1/logout", nil, "")
			Expect(rec.Code).To(Equal(http.StatusUnauthorized))
		})
	})
})
