package postup

import (
	"context"
	"net/http"
)

const (
	contentPath       = "/content/"
	contentFolderPath = "/contentfolder/"
)

// ContentService handles the /content library endpoints
type ContentService service

// ContentFolderService handles the /contentfolder endpoints
type ContentFolderService service

// ContentFile is a file in the content library
type ContentFile struct {
	ContentID int64       `json:"contentId,omitempty"`
	Name      string      `json:"name"`
	Path      string      `json:"path"`
	Type      ContentType `json:"type"`
	Creator   string      `json:"creator,omitempty"`
	Data      string      `json:"data,omitempty"`
	Created   string      `json:"created,omitempty"`
}

// ContentRequest is the payload for creating or replacing a library file
type ContentRequest struct {
	Data    string
	Name    string
	Path    string
	Type    ContentType
	Creator string
}

// ContentFolder is a folder of the content library
type ContentFolder struct {
	Path    string `json:"path"`
	Created string `json:"created,omitempty"`
}

func (r ContentRequest) validate() error {
	return firstError(
		NoNull(optional(r.Name), optional(r.Path)),
		r.Type.Validate(false),
	)
}

// Create uploads a new file to the content library
func (s *ContentService) Create(ctx context.Context, req ContentRequest) (*ContentFile, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}

	var file ContentFile
	body := Body{
		"data":    req.Data,
		"name":    req.Name,
		"path":    req.Path,
		"type":    optional(string(req.Type)),
		"creator": req.Creator,
	}
	if err := s.client.Do(ctx, http.MethodPost, contentPath, body, &file); err != nil {
		return nil, err
	}
	return &file, nil
}

// Update replaces the data of an existing library file. PostUp addresses
// the file by filename rather than name on update.
func (s *ContentService) Update(ctx context.Context, req ContentRequest) (*ContentFile, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}

	var file ContentFile
	body := Body{
		"data":     req.Data,
		"filename": req.Name,
		"path":     req.Path,
		"type":     optional(string(req.Type)),
		"creator":  req.Creator,
	}
	if err := s.client.Do(ctx, http.MethodPut, contentPath, body, &file); err != nil {
		return nil, err
	}
	return &file, nil
}

// GetByPath lists the files stored under path. An empty path lists the
// library root.
func (s *ContentService) GetByPath(ctx context.Context, path string) ([]ContentFile, error) {
	var files []ContentFile
	endpoint := contentPath + BuildQuery(map[string]any{"path": optional(path)})
	if err := s.client.Do(ctx, http.MethodGet, endpoint, nil, &files); err != nil {
		return nil, err
	}
	return files, nil
}

// GetByFilename retrieves a single file by name
func (s *ContentService) GetByFilename(ctx context.Context, filename string) (*ContentFile, error) {
	var file ContentFile
	endpoint := contentPath + BuildQuery(map[string]any{"filename": filename})
	if err := s.client.Do(ctx, http.MethodGet, endpoint, nil, &file); err != nil {
		return nil, err
	}
	return &file, nil
}

// Create creates a content library folder
func (s *ContentFolderService) Create(ctx context.Context, path string) (*ContentFolder, error) {
	if err := NoNull(optional(path)); err != nil {
		return nil, err
	}

	var folder ContentFolder
	if err := s.client.Do(ctx, http.MethodPost, contentFolderPath, Body{"path": path}, &folder); err != nil {
		return nil, err
	}
	return &folder, nil
}
