package usecases

import (
	"os"
	"path/filepath"
	"testing"

	"funcdata-hub/internal/database"
	domainerrors "funcdata-hub/internal/domain/errors"
	"funcdata-hub/internal/funcdata"
	repo "funcdata-hub/internal/infrastructure/repository/sqlite"
)

func setupUseCase(t *testing.T) *FuncDataUseCase {
	t.Helper()
	dir := t.TempDir()
	if err := database.InitDatabase(filepath.Join(dir, "unit.db")); err != nil {
		t.Fatalf("InitDatabase: %v", err)
	}
	t.Cleanup(func() { _ = database.GetDatabase().Close() })

	manager := funcdata.NewManager(repo.NewDocumentRepo(), filepath.Join(dir, "funcdata"))
	return NewFuncDataUseCase(manager)
}

func stageFile(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte("payload"), 0644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	return path
}

func TestFuncDataUseCase_UploadAndGet(t *testing.T) {
	uc := setupUseCase(t)

	obj, err := uc.Upload(stageFile(t, "scan1.nii"), false)
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}

	got, err := uc.Get(obj.Identifier)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Identifier != obj.Identifier {
		t.Fatalf("identifier mismatch: %s vs %s", got.Identifier, obj.Identifier)
	}

	info := ToInfo(got)
	if info.MimeType != funcdata.MimeNifti {
		t.Fatalf("unexpected mime type: %s", info.MimeType)
	}
	if !info.DataFileExists {
		t.Fatal("data file should exist on disk")
	}
}

func TestFuncDataUseCase_ListWithPagination(t *testing.T) {
	uc := setupUseCase(t)

	for i := 0; i < 3; i++ {
		if _, err := uc.Upload(stageFile(t, "scan1.nii"), false); err != nil {
			t.Fatalf("Upload: %v", err)
		}
	}

	items, total, err := uc.ListWithPagination(1, 2)
	if err != nil {
		t.Fatalf("ListWithPagination: %v", err)
	}
	if total != 3 {
		t.Fatalf("expected total 3, got %d", total)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}

	items2, _, err := uc.ListWithPagination(2, 2)
	if err != nil {
		t.Fatalf("ListWithPagination page 2: %v", err)
	}
	if len(items2) != 1 {
		t.Fatalf("expected 1 item on page 2, got %d", len(items2))
	}
}

func TestFuncDataUseCase_Delete(t *testing.T) {
	uc := setupUseCase(t)

	obj, err := uc.Upload(stageFile(t, "scan1.nii"), false)
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}

	if err := uc.Delete(obj.Identifier); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	got, err := uc.Get(obj.Identifier)
	if err != nil {
		t.Fatalf("Get after delete: %v", err)
	}
	if got.IsActive {
		t.Fatal("deleted object should be inactive")
	}

	err = uc.Delete("no-such-id")
	if !domainerrors.IsCode(err, domainerrors.CodeObjectNotFound) {
		t.Fatalf("expected object not found error, got %v", err)
	}
}
