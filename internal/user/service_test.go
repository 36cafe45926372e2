package user_test

import (
	"errors"
	"log/slog"
	"os"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"

	"github.com/frahmantamala/staff-portal/internal"
	userDatamodel "github.com/frahmantamala/staff-portal/internal/core/datamodel/user"
	"github.com/frahmantamala/staff-portal/internal/user"
)

func TestUserService(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "User Service Suite")
}

// MockRepository implements user.RepositoryAPI for testing
type MockRepository struct {
	users      map[string]*userDatamodel.User
	shouldFail bool
	failError  error
}

func NewMockRepository() *MockRepository {
	return &MockRepository{users: make(map[string]*userDatamodel.User)}
}

func (m *MockRepository) Create(u *userDatamodel.User) error {
	if m.shouldFail {
		return m.failError
	}
	m.users[u.ID] = u
	return nil
}

func (m *MockRepository) GetByEmail(email string) (*userDatamodel.User, error) {
	if m.shouldFail {
		return nil, m.failError
	}
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}

func (m *MockRepository) GetByID(id string) (*userDatamodel.User, error) {
	if m.shouldFail {
		return nil, m.failError
	}
	u, ok := m.users[id]
	if !ok {
		return nil, nil
	}
	return u, nil
}

func (m *MockRepository) UpdatePassword(id, passwordHash string) (*userDatamodel.User, error) {
	if m.shouldFail {
		return nil, m.failError
	}
	u, ok := m.users[id]
	if !ok {
		return nil, nil
	}
	u.PasswordHash = passwordHash
	return u, nil
}

func (m *MockRepository) SetVerified(id string) (*userDatamodel.User, error) {
	if m.shouldFail {
		return nil, m.failError
	}
	u, ok := m.users[id]
	if !ok {
		return nil, nil
	}
	u.IsVerified = true
	return u, nil
}

func (m *MockRepository) SetShouldFail(shouldFail bool, err error) {
	m.shouldFail = shouldFail
	m.failError = err
}

// MockPurger records token purges per user
type MockPurger struct {
	purged []string
}

func (m *MockPurger) DeleteByOwner(userID string) error {
	m.purged = append(m.purged, userID)
	return nil
}

var _ = Describe("User Service", func() {
	var (
		mockRepo   *MockRepository
		mockPurger *MockPurger
		service    *user.Service
		testLogger *slog.Logger
	)

	BeforeEach(func() {
		mockRepo = NewMockRepository()
		mockPurger = &MockPurger{}
		testLogger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service = user.NewService(mockRepo, mockPurger, bcrypt.MinCost, testLogger)
	})

	validDTO := func() user.RegisterDTO {
		return user.RegisterDTO{
			Name:     "Budi",
			Email:    "budi@mail.com",
			Password: "secret123",
			Role:     userDatamodel.RoleEmployee,
		}
	}

	Describe("Register", func() {
		Context("with valid input", func() {
			It("should create an unverified user with a hashed password", func() {
				// Given a valid registration
				// When the user registers
				u, err := service.Register(validDTO())

				// Then the account is stored with a bcrypt hash
				Expect(err).NotTo(HaveOccurred())
				Expect(u.ID).NotTo(BeEmpty())
				Expect(u.IsVerified).To(BeFalse())

				stored, _ := mockRepo.GetByEmail("budi@mail.com")
				Expect(stored.PasswordHash).NotTo(Equal("secret123"))
				Expect(bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("secret123"))).To(Succeed())
			})

			It("should fill in the default profile image", func() {
				u, err := service.Register(validDTO())
				Expect(err).NotTo(HaveOccurred())
				Expect(u.Image).To(Equal(userDatamodel.DefaultImage))
			})

			It("should keep an uploaded image reference", func() {
				dto := validDTO()
				dto.Image = "/uploads/abc.png"
				u, err := service.Register(dto)
				Expect(err).NotTo(HaveOccurred())
				Expect(u.Image).To(Equal("/uploads/abc.png"))
			})
		})

		Context("when the email is already taken", func() {
			BeforeEach(func() {
				_, err := service.Register(validDTO())
				Expect(err).NotTo(HaveOccurred())
			})

			It("should return a duplicate email error", func() {
				_, err := service.Register(validDTO())
				Expect(err).To(Equal(internal.ErrDuplicateEmail))
			})
		})

		Context("with invalid input", func() {
			It("should reject a short password", func() {
				dto := validDTO()
				dto.Password = "abc"
				_, err := service.Register(dto)

				appErr, ok := internal.IsAppError(err)
				Expect(ok).To(BeTrue())
				Expect(appErr.Code).To(Equal(internal.ErrCodePasswordTooShort))
			})

			It("should reject an unknown role", func() {
				dto := validDTO()
				dto.Role = "Superuser"
				_, err := service.Register(dto)

				appErr, ok := internal.IsAppError(err)
				Expect(ok).To(BeTrue())
				Expect(appErr.Code).To(Equal(internal.ErrCodeInvalidRole))
			})

			It("should reject missing fields", func() {
				_, err := service.Register(user.RegisterDTO{})
				Expect(err).To(HaveOccurred())
			})
		})

		Context("when repository fails", func() {
			BeforeEach(func() {
				mockRepo.SetShouldFail(true, errors.New("database error"))
			})

			It("should return an internal error", func() {
				_, err := service.Register(validDTO())
				Expect(err).To(HaveOccurred())
				Expect(err.Error()).To(ContainSubstring("database error"))
			})
		})
	})

	Describe("Authenticate", func() {
		Context("with a verified account", func() {
			BeforeEach(func() {
				u, err := service.Register(validDTO())
				Expect(err).NotTo(HaveOccurred())
				_, err = service.MarkVerified(u.ID)
				Expect(err).NotTo(HaveOccurred())
			})

			It("should succeed with the right password", func() {
				u, err := service.Authenticate("budi@mail.com", "secret123")
				Expect(err).NotTo(HaveOccurred())
				Expect(u.Email).To(Equal("budi@mail.com"))
			})

			It("should reject a wrong password", func() {
				_, err := service.Authenticate("budi@mail.com", "wrong")
				Expect(err).To(Equal(internal.ErrInvalidCredentials))
			})
		})

		Context("with an unverified account", func() {
			BeforeEach(func() {
				_, err := service.Register(validDTO())
				Expect(err).NotTo(HaveOccurred())
			})

			It("should refuse the login even with the right password", func() {
				_, err := service.Authenticate("budi@mail.com", "secret123")
				Expect(err).To(Equal(internal.ErrNotVerified))
			})
		})

		Context("with an unverified admin account", func() {
			BeforeEach(func() {
				dto := validDTO()
				dto.Email = "admin@mail.com"
				dto.Role = userDatamodel.RoleAdmin
				_, err := service.Register(dto)
				Expect(err).NotTo(HaveOccurred())
			})

			It("should allow the login", func() {
				u, err := service.Authenticate("admin@mail.com", "secret123")
				Expect(err).NotTo(HaveOccurred())
				Expect(u.Role).To(Equal(userDatamodel.RoleAdmin))
			})
		})

		Context("with an unknown email", func() {
			It("should return invalid credentials", func() {
				_, err := service.Authenticate("nobody@mail.com", "secret123")
				Expect(err).To(Equal(internal.ErrInvalidCredentials))
			})
		})
	})

	Describe("ChangePassword", func() {
		var registered *user.User

		BeforeEach(func() {
			var err error
			registered, err = service.Register(validDTO())
			Expect(err).NotTo(HaveOccurred())
			_, err = service.MarkVerified(registered.ID)
			Expect(err).NotTo(HaveOccurred())
		})

		It("should replace the hash and purge outstanding tokens", func() {
			_, err := service.ChangePassword(registered.ID, "newsecret")
			Expect(err).NotTo(HaveOccurred())

			_, err = service.Authenticate("budi@mail.com", "newsecret")
			Expect(err).NotTo(HaveOccurred())

			_, err = service.Authenticate("budi@mail.com", "secret123")
			Expect(err).To(Equal(internal.ErrInvalidCredentials))

			Expect(mockPurger.purged).To(ContainElement(registered.ID))
		})

		It("should reject a short password", func() {
			_, err := service.ChangePassword(registered.ID, "abc")
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodePasswordTooShort))
		})

		It("should return not found for an unknown user", func() {
			_, err := service.ChangePassword("missing-id", "newsecret")
			Expect(err).To(Equal(internal.ErrUserNotFound))
		})
	})

	Describe("GetProfile", func() {
		It("should project the user without the password hash", func() {
			registered, err := service.Register(validDTO())
			Expect(err).NotTo(HaveOccurred())

			profile, err := service.GetProfile(registered.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(profile.Name).To(Equal("Budi"))
			Expect(profile.Role).To(Equal(userDatamodel.RoleEmployee))
		})

		It("should return not found for an unknown user", func() {
			_, err := service.GetProfile("missing-id")
			Expect(err).To(Equal(internal.ErrUserNotFound))
		})
	})
})
