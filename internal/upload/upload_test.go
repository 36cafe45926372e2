package upload_test

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/staff-portal/internal"
	"github.com/frahmantamala/staff-portal/internal/upload"
)

func TestUpload(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Upload Suite")
}

var _ = Describe("Upload Store", func() {
	var store *upload.Store

	newUploadRequest := func(filename string, content []byte) *http.Request {
		body := &bytes.Buffer{}
		writer := multipart.NewWriter(body)
		if filename != "" {
			part, err := writer.CreateFormFile("image", filename)
			Expect(err).NotTo(HaveOccurred())
			_, err = part.Write(content)
			Expect(err).NotTo(HaveOccurred())
		}
		Expect(writer.Close()).To(Succeed())

		req := httptest.NewRequest(http.MethodPost, "/register", body)
		req.Header.Set("Content-Type", writer.FormDataContentType())
		return req
	}

	BeforeEach(func() {
		dir, err := os.MkdirTemp("", "uploads")
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(os.RemoveAll, dir)

		store, err = upload.NewStore(dir)
		Expect(err).NotTo(HaveOccurred())
	})

	It("should store a png and return its public reference", func() {
		req := newUploadRequest("avatar.png", []byte("png-bytes"))

		ref, err := store.Save(req, "image")
		Expect(err).NotTo(HaveOccurred())
		Expect(ref).To(HavePrefix("/uploads/"))
		Expect(ref).To(HaveSuffix(".png"))

		stored, err := os.ReadFile(filepath.Join(store.Dir(), strings.TrimPrefix(ref, "/uploads/")))
		Expect(err).NotTo(HaveOccurred())
		Expect(stored).To(Equal([]byte("png-bytes")))
	})

	It("should return an empty reference when no file was sent", func() {
		req := newUploadRequest("", nil)

		ref, err := store.Save(req, "image")
		Expect(err).NotTo(HaveOccurred())
		Expect(ref).To(BeEmpty())
	})

	It("should tolerate a non-multipart request", func() {
		req := httptest.NewRequest(http.MethodPost, "/register", strings.NewReader("name=Budi"))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

		ref, err := store.Save(req, "image")
		Expect(err).NotTo(HaveOccurred())
		Expect(ref).To(BeEmpty())
	})

	It("should reject an unsupported extension", func() {
		req := newUploadRequest("avatar.gif", []byte("gif-bytes"))

		_, err := store.Save(req, "image")
		appErr, ok := internal.IsAppError(err)
		Expect(ok).To(BeTrue())
		Expect(appErr.Code).To(Equal(internal.ErrCodeInvalidImage))
	})

	It("should give each upload a unique name", func() {
		ref1, err := store.Save(newUploadRequest("a.png", []byte("one")), "image")
		Expect(err).NotTo(HaveOccurred())
		ref2, err := store.Save(newUploadRequest("a.png", []byte("two")), "image")
		Expect(err).NotTo(HaveOccurred())
		Expect(ref1).NotTo(Equal(ref2))
	})
})
