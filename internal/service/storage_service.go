package service

import (
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dushixiang/tradenote/internal/config"
	"github.com/dushixiang/tradenote/internal/models"
	"github.com/dushixiang/tradenote/internal/xe"
	"github.com/dushixiang/tradenote/pkg/nostd"
	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
)

var allowedImageExts = map[string]struct{}{
	".jpg":  {},
	".jpeg": {},
	".png":  {},
	".gif":  {},
}

// StorageService keeps trade screenshots on local disk. The trade flow only
// hands it filenames to save or release; it never reaches into trade rows.
type StorageService struct {
	logger   *zap.Logger
	baseDir  string
	maxSize  int64
	maxFiles int
}

func NewStorageService(logger *zap.Logger, conf *config.Config) *StorageService {
	dir := conf.Upload.Dir
	if dir == "" {
		dir = "./uploads"
	}
	maxSizeMB := conf.Upload.MaxSizeMB
	if maxSizeMB <= 0 {
		maxSizeMB = 5
	}
	maxFiles := conf.Upload.MaxFilesPerTrade
	if maxFiles <= 0 {
		maxFiles = 5
	}
	return &StorageService{
		logger:   logger,
		baseDir:  dir,
		maxSize:  int64(maxSizeMB) << 20,
		maxFiles: maxFiles,
	}
}

// BaseDir is the directory served under /uploads.
func (s *StorageService) BaseDir() string {
	return s.baseDir
}

// SaveImages stores every uploaded screenshot and returns their metadata.
// Files already written are removed again when a later one is rejected.
func (s *StorageService) SaveImages(files []*multipart.FileHeader) ([]models.TradeImage, error) {
	if len(files) == 0 {
		return nil, nil
	}
	if len(files) > s.maxFiles {
		return nil, xe.ErrInvalidImage
	}

	if err := os.MkdirAll(s.baseDir, 0o755); err != nil {
		return nil, err
	}

	saved := make([]models.TradeImage, 0, len(files))
	for _, fh := range files {
		image, err := s.saveOne(fh)
		if err != nil {
			s.RemoveImages(saved)
			return nil, err
		}
		saved = append(saved, image)
	}
	return saved, nil
}

func (s *StorageService) saveOne(fh *multipart.FileHeader) (models.TradeImage, error) {
	ext := strings.ToLower(filepath.Ext(fh.Filename))
	if _, ok := allowedImageExts[ext]; !ok {
		return models.TradeImage{}, xe.ErrInvalidImage
	}
	if fh.Size > s.maxSize {
		return models.TradeImage{}, xe.ErrInvalidImage
	}

	src, err := fh.Open()
	if err != nil {
		return models.TradeImage{}, err
	}
	defer src.Close()

	filename := ulid.Make().String() + ext
	target, err := nostd.SafePathJoin(s.baseDir, filename)
	if err != nil {
		return models.TradeImage{}, err
	}

	dst, err := os.Create(target)
	if err != nil {
		return models.TradeImage{}, err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return models.TradeImage{}, err
	}

	return models.TradeImage{
		Filename:     filename,
		OriginalName: fh.Filename,
		Path:         "/uploads/" + filename,
		UploadedAt:   time.Now(),
	}, nil
}

// RemoveImages releases stored files. Missing files are not an error; other
// failures are logged and skipped so one bad file never blocks the rest.
func (s *StorageService) RemoveImages(images []models.TradeImage) {
	for _, image := range images {
		target, err := nostd.SafePathJoin(s.baseDir, image.Filename)
		if err != nil {
			s.logger.Warn("refusing to remove image outside upload dir",
				zap.String("filename", image.Filename), zap.Error(err))
			continue
		}
		if err := os.Remove(target); err != nil && !os.IsNotExist(err) {
			s.logger.Warn("failed to remove image",
				zap.String("filename", image.Filename), zap.Error(err))
		}
	}
}
