package mergejob

import (
	"arxml-merger/core/storage"
	"arxml-merger/feature/validate"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Feature implements the loader.Feature interface.
type Feature struct {
	service *Service
	handler *Handler
}

// NewFeature creates the merge job feature.
func NewFeature(client storage.Client, bucket string, logger *zap.Logger, db *gorm.DB, opts Options) *Feature {
	validator := validate.NewService(opts.ReferencePatterns, logger)
	if opts.Hook == nil {
		opts.Hook = validator.Hook()
	}

	svc := NewService(client, bucket, logger, db, opts)
	h := NewHandler(svc, validator)
	return &Feature{service: svc, handler: h}
}

// Name returns the name of the feature.
func (f *Feature) Name() string {
	return "mergejob"
}

// IsEnabled checks if the feature is enabled.
func (f *Feature) IsEnabled() bool {
	return true
}

// Load registers the feature's routes.
func (f *Feature) Load(app fiber.Router) error {
	f.handler.RegisterRoutes(app)
	return nil
}

// Service exposes the underlying service for lifecycle wiring.
func (f *Feature) Service() *Service {
	return f.service
}
