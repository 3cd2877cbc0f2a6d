package adapter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/glideapp/glide-sync/models"
)

// lastKnownHeader carries the client's last known server updated_at on
// partial updates so the server can detect independent modification.
const lastKnownHeader = "X-Last-Known-Updated-At"

type HTTPClientConfig struct {
	BaseURL string
	Token   string
	Timeout time.Duration
}

type httpAPIClient struct {
	client *resty.Client

	mu    sync.RWMutex
	token string
}

func NewHTTPAPIClient(cfg HTTPClientConfig) APIClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://localhost:8000"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	cli := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(cfg.Timeout)

	h := &httpAPIClient{client: cli}
	h.SetToken(cfg.Token)
	return h
}

func (h *httpAPIClient) SetToken(token string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.token = strings.TrimSpace(token)
}

func (h *httpAPIClient) Token() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.token
}

// Subject returns the sub claim of the configured bearer token without
// verifying the signature. Used only for log enrichment; the server is the
// authority on the token's validity.
func (h *httpAPIClient) Subject() string {
	token, _, err := jwt.NewParser().ParseUnverified(h.Token(), jwt.MapClaims{})
	if err != nil {
		return ""
	}
	sub, err := token.Claims.GetSubject()
	if err != nil {
		return ""
	}
	return sub
}

func (h *httpAPIClient) Health(ctx context.Context) error {
	resp, err := h.client.R().SetContext(ctx).Get("/health")
	if err != nil {
		return mapTransportError("health request", err)
	}
	return mapHTTPError(resp)
}

func (h *httpAPIClient) CreateNote(ctx context.Context, note models.Note) (models.Note, error) {
	resp, err := h.authedRequest(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(note).
		Post("/api/v1/notes")
	if err != nil {
		return models.Note{}, mapTransportError("create note request", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return models.Note{}, err
	}

	var created models.Note
	if err = json.Unmarshal(resp.Body(), &created); err != nil {
		return models.Note{}, fmt.Errorf("decode create note response: %w", err)
	}
	return created, nil
}

func (h *httpAPIClient) UpdateNote(ctx context.Context, id uuid.UUID, patch models.NotePatch, lastKnown *time.Time) (models.Note, error) {
	req := h.authedRequest(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(patch)
	if lastKnown != nil {
		req.SetHeader(lastKnownHeader, lastKnown.UTC().Format(time.RFC3339Nano))
	}

	resp, err := req.Patch("/api/v1/notes/" + id.String())
	if err != nil {
		return models.Note{}, mapTransportError("update note request", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return models.Note{}, err
	}

	var updated models.Note
	if err = json.Unmarshal(resp.Body(), &updated); err != nil {
		return models.Note{}, fmt.Errorf("decode update note response: %w", err)
	}
	return updated, nil
}

func (h *httpAPIClient) DeleteNote(ctx context.Context, id uuid.UUID, permanent bool) error {
	req := h.authedRequest(ctx)
	if permanent {
		req.SetQueryParam("permanent", "1")
	}

	resp, err := req.Delete("/api/v1/notes/" + id.String())
	if err != nil {
		return mapTransportError("delete note request", err)
	}
	return mapHTTPError(resp)
}

func (h *httpAPIClient) RestoreNote(ctx context.Context, id uuid.UUID) (models.Note, error) {
	resp, err := h.authedRequest(ctx).Post("/api/v1/notes/" + id.String() + "/restore")
	if err != nil {
		return models.Note{}, mapTransportError("restore note request", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return models.Note{}, err
	}

	var restored models.Note
	if err = json.Unmarshal(resp.Body(), &restored); err != nil {
		return models.Note{}, fmt.Errorf("decode restore note response: %w", err)
	}
	return restored, nil
}

func (h *httpAPIClient) ListNotes(ctx context.Context, params models.NoteListParams) (models.NoteList, error) {
	req := h.authedRequest(ctx)
	if params.FolderID != nil {
		req.SetQueryParam("folder_id", params.FolderID.String())
	}
	if params.Query != "" {
		req.SetQueryParam("q", params.Query)
	}
	if len(params.Tags) > 0 {
		req.SetQueryParam("tags", strings.Join(params.Tags, ","))
	}
	if params.IsPinned != nil {
		req.SetQueryParam("is_pinned", strconv.FormatBool(*params.IsPinned))
	}
	if params.IsArchived != nil {
		req.SetQueryParam("is_archived", strconv.FormatBool(*params.IsArchived))
	}
	if params.Page > 0 {
		req.SetQueryParam("page", strconv.Itoa(params.Page))
	}
	if params.PerPage > 0 {
		req.SetQueryParam("per_page", strconv.Itoa(params.PerPage))
	}

	resp, err := req.Get("/api/v1/notes")
	if err != nil {
		return models.NoteList{}, mapTransportError("list notes request", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return models.NoteList{}, err
	}

	var list models.NoteList
	if err = json.Unmarshal(resp.Body(), &list); err != nil {
		return models.NoteList{}, fmt.Errorf("decode list notes response: %w", err)
	}
	return list, nil
}

func (h *httpAPIClient) CreateFolder(ctx context.Context, folder models.Folder) (models.Folder, error) {
	resp, err := h.authedRequest(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(folder).
		Post("/api/v1/folders")
	if err != nil {
		return models.Folder{}, mapTransportError("create folder request", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return models.Folder{}, err
	}

	var created models.Folder
	if err = json.Unmarshal(resp.Body(), &created); err != nil {
		return models.Folder{}, fmt.Errorf("decode create folder response: %w", err)
	}
	return created, nil
}

func (h *httpAPIClient) UpdateFolder(ctx context.Context, id uuid.UUID, patch models.FolderPatch, lastKnown *time.Time) (models.Folder, error) {
	req := h.authedRequest(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(patch)
	if lastKnown != nil {
		req.SetHeader(lastKnownHeader, lastKnown.UTC().Format(time.RFC3339Nano))
	}

	resp, err := req.Patch("/api/v1/folders/" + id.String())
	if err != nil {
		return models.Folder{}, mapTransportError("update folder request", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return models.Folder{}, err
	}

	var updated models.Folder
	if err = json.Unmarshal(resp.Body(), &updated); err != nil {
		return models.Folder{}, fmt.Errorf("decode update folder response: %w", err)
	}
	return updated, nil
}

func (h *httpAPIClient) DeleteFolder(ctx context.Context, id uuid.UUID) error {
	resp, err := h.authedRequest(ctx).Delete("/api/v1/folders/" + id.String())
	if err != nil {
		return mapTransportError("delete folder request", err)
	}
	return mapHTTPError(resp)
}

func (h *httpAPIClient) ListFolders(ctx context.Context) ([]models.Folder, error) {
	resp, err := h.authedRequest(ctx).Get("/api/v1/folders")
	if err != nil {
		return nil, mapTransportError("list folders request", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return nil, err
	}

	var folders []models.Folder
	if err = json.Unmarshal(resp.Body(), &folders); err != nil {
		return nil, fmt.Errorf("decode list folders response: %w", err)
	}
	return folders, nil
}

func (h *httpAPIClient) UploadURL(ctx context.Context, req models.UploadURLRequest) (models.UploadURLResponse, error) {
	resp, err := h.authedRequest(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(req).
		Post("/api/v1/voice/upload-url")
	if err != nil {
		return models.UploadURLResponse{}, mapTransportError("upload url request", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return models.UploadURLResponse{}, err
	}

	var dest models.UploadURLResponse
	if err = json.Unmarshal(resp.Body(), &dest); err != nil {
		return models.UploadURLResponse{}, fmt.Errorf("decode upload url response: %w", err)
	}
	if dest.UploadURL == "" || dest.Key == "" {
		return models.UploadURLResponse{}, fmt.Errorf("%w: empty upload destination", ErrValidation)
	}
	return dest, nil
}

// UploadFile streams the recording to the presigned destination. The raw
// http.Client underneath resty is used directly: the presigned URL must not
// carry the bearer header, and S3 requires an explicit Content-Length, which
// means setting the request's ContentLength for a streaming body.
func (h *httpAPIClient) UploadFile(ctx context.Context, uploadURL, path, contentType string, fn ProgressFunc) error {
	if _, err := url.ParseRequestURI(uploadURL); err != nil {
		return fmt.Errorf("%w: invalid upload url: %w", ErrValidation, err)
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open upload file: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat upload file: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, uploadURL, newProgressReader(f, info.Size(), fn))
	if err != nil {
		return fmt.Errorf("build upload request: %w", err)
	}
	req.ContentLength = info.Size()
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := h.client.GetClient().Do(req)
	if err != nil {
		return mapTransportError("upload file request", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		if resp.StatusCode >= http.StatusInternalServerError || resp.StatusCode == http.StatusTooManyRequests {
			return fmt.Errorf("%w: upload http %d", ErrUnavailable, resp.StatusCode)
		}
		return fmt.Errorf("%w: upload http %d", ErrValidation, resp.StatusCode)
	}
	return nil
}

func (h *httpAPIClient) ProcessVoice(ctx context.Context, req models.ProcessRequest) (models.ProcessResponse, error) {
	resp, err := h.authedRequest(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(req).
		Post("/api/v1/voice/process")
	if err != nil {
		return models.ProcessResponse{}, mapTransportError("process voice request", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return models.ProcessResponse{}, err
	}

	var processed models.ProcessResponse
	if err = json.Unmarshal(resp.Body(), &processed); err != nil {
		return models.ProcessResponse{}, fmt.Errorf("decode process voice response: %w", err)
	}
	return processed, nil
}

func (h *httpAPIClient) DeleteObject(ctx context.Context, key string) error {
	resp, err := h.authedRequest(ctx).Delete("/api/v1/voice/objects/" + url.PathEscape(key))
	if err != nil {
		return mapTransportError("delete object request", err)
	}
	// A missing partial object is as good as a deleted one.
	if err = mapHTTPError(resp); err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}
	return nil
}

func (h *httpAPIClient) authedRequest(ctx context.Context) *resty.Request {
	req := h.client.R().SetContext(ctx)
	if token := h.Token(); token != "" {
		req.SetHeader("Authorization", "Bearer "+token)
	}
	return req
}
