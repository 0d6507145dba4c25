package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/hireline/hireline/internal/pkg/goerror"
	"github.com/hireline/hireline/internal/pkg/storage"
)

var errResumeTooLarge = errors.New("resume exceeds max size")

type ResumeUploadInput struct {
	File        io.Reader
	ContentType string
}

type ResumeUploadOutput struct {
	ResumeURL string
}

// ResumeUpload stores a PDF resume for the authenticated account and records
// its public URL on the account row. Only application/pdf is accepted.
func (s *Usecase) ResumeUpload(ctx context.Context, in ResumeUploadInput) (*ResumeUploadOutput, error) {
	ctx, span := s.startSpan(ctx, "ResumeUpload")
	defer span.End()

	clm, err := s.authenticated(ctx)
	if err != nil {
		return nil, err
	}

	if in.File == nil {
		return nil, goerror.NewInvalidInput(nil, "resume", "resume file is required")
	}

	contentType := strings.ToLower(strings.TrimSpace(in.ContentType))
	if contentType != "application/pdf" {
		return nil, goerror.NewInvalidInput(nil, "resume", "resume must be a PDF document")
	}

	bucket := strings.TrimSpace(s.cfg.GetString("modules.identity.resume_bucket"))
	baseURL := strings.TrimSpace(s.cfg.GetString("modules.identity.resume_base_url"))
	maxSize := s.cfg.GetInt64("modules.identity.resume_max_size_bytes")
	key := fmt.Sprintf("%d/%s.pdf", clm.UserID, s.objectID.Generate())

	reader := &maxBytesReader{
		r:   in.File,
		max: maxSize,
	}
	_, err = s.storage.PutObject(ctx, bucket, key, reader, storage.PutOptions{
		Size:        -1,
		ContentType: contentType,
		Metadata:    map[string]string{"user_id": strconv.FormatInt(clm.UserID, 10)},
	})
	if err != nil {
		if errors.Is(err, errResumeTooLarge) {
			return nil, goerror.NewInvalidInput(errResumeTooLarge)
		}
		slog.ErrorContext(ctx, "failed to upload resume", "user_id", clm.UserID, "error", err)
		return nil, goerror.NewServer(err)
	}

	resumeURL := baseURL + "/" + key
	err = s.repoDB.UpdateResumeURL(ctx, clm.UserID, resumeURL)
	if errors.Is(err, goerror.ErrNotFound) {
		slog.WarnContext(ctx, "account not found for valid token", "user_id", clm.UserID)
		return nil, goerror.NewBusiness("Authentication required", goerror.CodeUnauthorized)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to update resume url", "user_id", clm.UserID, "error", err)
		return nil, goerror.NewServer(err)
	}

	return &ResumeUploadOutput{ResumeURL: resumeURL}, nil
}

// maxBytesReader stops a copy after max bytes, probing one extra byte so a
// stream of exactly max bytes is not rejected.
type maxBytesReader struct {
	r     io.Reader
	max   int64
	read  int64
	buf   [1]byte
	ended bool
}

func (m *maxBytesReader) Read(p []byte) (int, error) {
	if m.read >= m.max {
		if m.ended {
			return 0, errResumeTooLarge
		}

		n, err := m.r.Read(m.buf[:])
		if n > 0 {
			m.ended = true
			return 0, errResumeTooLarge
		}
		return 0, err
	}

	remaining := m.max - m.read
	if int64(len(p)) > remaining {
		p = p[:remaining]
	}

	n, err := m.r.Read(p)
	m.read += int64(n)
	return n, err
}
