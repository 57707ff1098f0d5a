package usecases

import (
	"os"

	"funcdata-hub/internal/domain/entities"
	"funcdata-hub/internal/funcdata"
)

// FuncDataInfo is the API-facing view of a functional data object.
type FuncDataInfo struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Filename       string `json:"filename"`
	Size           int64  `json:"size"`
	MimeType       string `json:"mimeType"`
	Timestamp      string `json:"timestamp"`
	IsActive       bool   `json:"isActive"`
	ReadOnly       bool   `json:"readOnly"`
	DataFile       string `json:"dataFile"`
	DataFileExists bool   `json:"dataFileExists"`
}

type FuncDataUseCase struct {
	manager *funcdata.Manager
}

func NewFuncDataUseCase(manager *funcdata.Manager) *FuncDataUseCase {
	return &FuncDataUseCase{manager: manager}
}

// ToInfo converts a handle into its API view, checking whether the data file
// is still present on disk.
func ToInfo(obj *entities.FunctionalData) FuncDataInfo {
	_, statErr := os.Stat(obj.DataFile)
	return FuncDataInfo{
		ID:             obj.Identifier,
		Name:           obj.Filename(),
		Filename:       obj.Filename(),
		Size:           obj.Filesize(),
		MimeType:       obj.MimeType(),
		Timestamp:      obj.Timestamp.Format(funcdata.TimestampLayout),
		IsActive:       obj.IsActive,
		ReadOnly:       obj.ReadOnly(),
		DataFile:       obj.DataFile,
		DataFileExists: statErr == nil,
	}
}

// Upload creates a new object from an uploaded file already on local disk.
func (uc *FuncDataUseCase) Upload(path string, readOnly bool) (*entities.FunctionalData, error) {
	return uc.manager.CreateObject(path, readOnly)
}

// Get returns a single object by identifier.
func (uc *FuncDataUseCase) Get(identifier string) (*entities.FunctionalData, error) {
	return uc.manager.GetObject(identifier)
}

// ListWithPagination returns objects and total count with basic pagination.
func (uc *FuncDataUseCase) ListWithPagination(page, limit int) ([]FuncDataInfo, int, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 50
	}
	offset := (page - 1) * limit

	objects, total, err := uc.manager.ListObjects(offset, limit)
	if err != nil {
		return nil, 0, err
	}
	out := make([]FuncDataInfo, 0, len(objects))
	for _, obj := range objects {
		out = append(out, ToInfo(obj))
	}
	return out, total, nil
}

// Delete soft-deletes an object; its files remain on disk.
func (uc *FuncDataUseCase) Delete(identifier string) error {
	return uc.manager.DeleteObject(identifier)
}
