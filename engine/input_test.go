package engine

import (
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

const samplePDF = "%PDF-1.4 sample"

func testDownloader(maxBytes int64) *Downloader {
	return NewDownloader(2*time.Second, maxBytes)
}

func TestFetchPDF(t *testing.T) {
	t.Run("pdf content type accepted", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/pdf")
			w.Write([]byte(samplePDF))
		}))
		defer server.Close()

		data, apiErr := testDownloader(10 << 20).FetchPDF(server.URL)
		if apiErr != nil {
			t.Fatalf("FetchPDF failed: %v", apiErr)
		}
		if string(data) != samplePDF {
			t.Errorf("Unexpected body: %q", data)
		}
	})

	t.Run("pdf url suffix accepted despite content type", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/octet-stream")
			w.Write([]byte(samplePDF))
		}))
		defer server.Close()

		if _, apiErr := testDownloader(10 << 20).FetchPDF(server.URL + "/document.pdf"); apiErr != nil {
			t.Fatalf("URL with .pdf suffix should pass: %v", apiErr)
		}
	})

	t.Run("non-pdf response rejected", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/html")
			w.Write([]byte("<html></html>"))
		}))
		defer server.Close()

		_, apiErr := testDownloader(10 << 20).FetchPDF(server.URL)
		if apiErr == nil {
			t.Fatal("Expected rejection of non-PDF response")
		}
		if apiErr.message != "URL does not point to a PDF file" {
			t.Errorf("Unexpected message: %q", apiErr.message)
		}
	})

	t.Run("non-200 status rejected", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.NotFound(w, r)
		}))
		defer server.Close()

		_, apiErr := testDownloader(10 << 20).FetchPDF(server.URL)
		if apiErr == nil {
			t.Fatal("Expected error for 404 response")
		}
		if apiErr.status != 400 || !strings.Contains(apiErr.message, "HTTP 404") {
			t.Errorf("Unexpected error: status %d, message %q", apiErr.status, apiErr.message)
		}
	})

	t.Run("timeout maps to 408", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(500 * time.Millisecond)
		}))
		defer server.Close()

		downloader := NewDownloader(50*time.Millisecond, 10<<20)
		_, apiErr := downloader.FetchPDF(server.URL)
		if apiErr == nil {
			t.Fatal("Expected timeout error")
		}
		if apiErr.status != http.StatusRequestTimeout {
			t.Errorf("Expected status 408, got %d", apiErr.status)
		}
	})
}

func TestResolvePDFPriorityAndErrors(t *testing.T) {
	handler := testHandler(&fakeRenderer{pages: 1})
	handler.Downloader = testDownloader(10 << 20)

	t.Run("no source", func(t *testing.T) {
		_, _, apiErr := handler.resolvePDF(&requestEnvelope{})
		if apiErr == nil {
			t.Fatal("Expected error for missing source")
		}
		if apiErr.message != "No PDF provided. Use file upload, pdf_url, or pdf_base64" {
			t.Errorf("Unexpected message: %q", apiErr.message)
		}
	})

	t.Run("upload without pdf suffix rejected", func(t *testing.T) {
		envelope := &requestEnvelope{upload: &uploadedPDF{data: []byte(samplePDF), filename: "notes.txt"}}
		_, _, apiErr := handler.resolvePDF(envelope)
		if apiErr == nil || apiErr.message != "File must be a PDF" {
			t.Errorf("Expected PDF suffix rejection, got %v", apiErr)
		}
	})

	t.Run("upload wins over other sources", func(t *testing.T) {
		envelope := &requestEnvelope{
			upload: &uploadedPDF{data: []byte(samplePDF), filename: "Invoice 2024.PDF"},
			body:   &jsonBody{PDFURL: "http://127.0.0.1:1/unreachable.pdf", PDFBase64: "AAAA"},
		}
		data, base, apiErr := handler.resolvePDF(envelope)
		if apiErr != nil {
			t.Fatalf("resolvePDF failed: %v", apiErr)
		}
		if string(data) != samplePDF {
			t.Error("Upload bytes not returned")
		}
		if base != "Invoice_2024" {
			t.Errorf("Expected sanitized base %q, got %q", "Invoice_2024", base)
		}
	})

	t.Run("base64 source decoded", func(t *testing.T) {
		envelope := &requestEnvelope{
			body: &jsonBody{PDFBase64: base64.StdEncoding.EncodeToString([]byte(samplePDF))},
		}
		data, base, apiErr := handler.resolvePDF(envelope)
		if apiErr != nil {
			t.Fatalf("resolvePDF failed: %v", apiErr)
		}
		if string(data) != samplePDF {
			t.Error("Base64 bytes not decoded")
		}
		if !strings.HasPrefix(base, "base64_pdf_") {
			t.Errorf("Expected generated base64_pdf_ filename, got %q", base)
		}
	})

	t.Run("malformed base64 rejected", func(t *testing.T) {
		envelope := &requestEnvelope{body: &jsonBody{PDFBase64: "not-valid-base64!!!"}}
		_, _, apiErr := handler.resolvePDF(envelope)
		if apiErr == nil || apiErr.message != "Invalid base64 PDF data" {
			t.Errorf("Expected base64 decode rejection, got %v", apiErr)
		}
	})

	t.Run("url source fetched", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/pdf")
			w.Write([]byte(samplePDF))
		}))
		defer server.Close()

		envelope := &requestEnvelope{body: &jsonBody{PDFURL: server.URL}}
		data, base, apiErr := handler.resolvePDF(envelope)
		if apiErr != nil {
			t.Fatalf("resolvePDF failed: %v", apiErr)
		}
		if string(data) != samplePDF {
			t.Error("URL bytes not returned")
		}
		if !strings.HasPrefix(base, "url_pdf_") {
			t.Errorf("Expected generated url_pdf_ filename, got %q", base)
		}
	})
}

func TestSanitizeFilename(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"report", "report"},
		{"My Report (final)", "My_Report_final"},
		{"../../etc/passwd", "etc_passwd"},
		{"///", "converted_page"},
		{"", "converted_page"},
	}
	for _, testCase := range cases {
		if got := sanitizeFilename(testCase.in); got != testCase.want {
			t.Errorf("sanitizeFilename(%q) = %q, want %q", testCase.in, got, testCase.want)
		}
	}
}
