package upload

import (
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	apperr "swinpack/internal/errors"
	"swinpack/internal/logging"
)

// Greeting the login endpoint must answer with, compared case-insensitively
// after trimming.
const loginGreeting = "welcome to the swin depot upload service"

// Classification fields accompanying every transfer.
const (
	fieldFileType    = "SWIN"
	fieldContentType = "correlator_output"
)

// successPhrases are matched case-insensitively as substrings of the upload
// response body.
var successPhrases = []string{
	"upload successful",
	"file successfully uploaded",
	"queued for processing",
}

// Publisher performs the two-phase transfer: authenticate against the login
// endpoint, then send the archive as a multipart upload on the same cookie
// session.
type Publisher struct {
	BaseURL string
	Client  *http.Client
	Logger  logging.Logger
}

func NewPublisher(baseURL string, lg logging.Logger) (*Publisher, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "create cookie jar", err)
	}
	return &Publisher{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client:  &http.Client{Jar: jar},
		Logger:  lg,
	}, nil
}

// Publish runs both phases. The transfer request is never issued unless the
// login greeting matched.
func (p *Publisher) Publish(ctx context.Context, archivePath string, creds Credentials) error {
	stop := p.Logger.Measure("Uploading archive")
	defer stop()

	if err := p.login(ctx, creds); err != nil {
		return err
	}
	return p.send(ctx, archivePath)
}

func (p *Publisher) login(ctx context.Context, creds Credentials) error {
	form := url.Values{
		"username": {creds.Username},
		"password": {creds.Password},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		p.BaseURL+"/login", strings.NewReader(form.Encode()))
	if err != nil {
		return apperr.Wrap(apperr.Internal, "login", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	body, err := p.do(req, apperr.AuthFailure, "login")
	if err != nil {
		return err
	}
	if !strings.EqualFold(strings.TrimSpace(body), loginGreeting) {
		return apperr.New(apperr.AuthFailure, "login",
			"unexpected login response: "+strings.TrimSpace(body))
	}
	p.Logger.Verbosef("login accepted by %s", p.BaseURL)
	return nil
}

// send uploads the archive through a symlink in a private temp dir so the
// transmitted filename is exactly the archive basename, whatever path the
// caller handed in.
func (p *Publisher) send(ctx context.Context, archivePath string) error {
	tmpDir, err := os.MkdirTemp("", "swinpack-upload-")
	if err != nil {
		return apperr.Wrap(apperr.IOFailure, "upload", err)
	}
	defer os.RemoveAll(tmpDir)

	real, err := filepath.EvalSymlinks(archivePath)
	if err != nil {
		return apperr.Wrap(apperr.IOFailure, "upload", err, archivePath)
	}
	link := filepath.Join(tmpDir, filepath.Base(archivePath))
	if err := os.Symlink(real, link); err != nil {
		return apperr.Wrap(apperr.IOFailure, "upload", err, link)
	}

	pr, pw := io.Pipe()
	writer := multipart.NewWriter(pw)
	go func() {
		pw.CloseWithError(writeUploadBody(writer, link))
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.BaseURL+"/upload", pr)
	if err != nil {
		return apperr.Wrap(apperr.Internal, "upload", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	body, err := p.do(req, apperr.TransferFailure, "upload")
	if err != nil {
		return err
	}
	lower := strings.ToLower(body)
	for _, phrase := range successPhrases {
		if strings.Contains(lower, phrase) {
			p.Logger.Verbosef("depot accepted %s", filepath.Base(archivePath))
			return nil
		}
	}
	return apperr.New(apperr.TransferFailure, "upload",
		"depot did not confirm the upload: "+strings.TrimSpace(body), archivePath)
}

func writeUploadBody(writer *multipart.Writer, link string) error {
	if err := writer.WriteField("fileType", fieldFileType); err != nil {
		return err
	}
	if err := writer.WriteField("fileContentType", fieldContentType); err != nil {
		return err
	}
	part, err := writer.CreateFormFile("file[]", filepath.Base(link))
	if err != nil {
		return err
	}
	f, err := os.Open(link)
	if err != nil {
		return err
	}
	defer f.Close()
	if _, err := io.Copy(part, f); err != nil {
		return err
	}
	return writer.Close()
}

func (p *Publisher) do(req *http.Request, kind apperr.Kind, op string) (string, error) {
	resp, err := p.Client.Do(req)
	if err != nil {
		if req.Context().Err() != nil {
			return "", apperr.New(apperr.Interrupted, op, "interrupted")
		}
		return "", apperr.Wrap(kind, op, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", apperr.Wrap(kind, op, err)
	}
	return string(body), nil
}
