package services

import (
	"errors"
	"strconv"

	"github.com/luneclub/lune/backend/internal/models"
	"github.com/luneclub/lune/backend/pkg/response"
	"gorm.io/gorm"
)

type SystemConfigService struct {
	db *gorm.DB
}

func NewSystemConfigService(db *gorm.DB) *SystemConfigService {
	return &SystemConfigService{db: db}
}

func (s *SystemConfigService) Get(key string) (string, error) {
	var cfg models.SystemConfig
	if err := s.db.Where("config_key = ?", key).First(&cfg).Error; err != nil {
		return "", err
	}
	return cfg.Value, nil
}

func (s *SystemConfigService) GetWithDefault(key, defaultValue string) string {
	value, err := s.Get(key)
	if err != nil {
		return defaultValue
	}
	return value
}

// GetInt reads a positive integer setting, falling back on missing or
// malformed values.
func (s *SystemConfigService) GetInt(key string, defaultValue int) int {
	n, err := strconv.Atoi(s.GetWithDefault(key, ""))
	if err != nil || n <= 0 {
		return defaultValue
	}
	return n
}

func (s *SystemConfigService) GetBool(key string, defaultValue bool) bool {
	b, err := strconv.ParseBool(s.GetWithDefault(key, ""))
	if err != nil {
		return defaultValue
	}
	return b
}

func (s *SystemConfigService) Set(key, value string) error {
	var cfg models.SystemConfig
	err := s.db.Where("config_key = ?", key).First(&cfg).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		cfg = models.SystemConfig{
			Key:   key,
			Value: value,
		}
		return s.db.Create(&cfg).Error
	}
	if err != nil {
		return err
	}
	return s.db.Model(&cfg).Update("value", value).Error
}

func (s *SystemConfigService) GetByGroup(group string) ([]models.SystemConfig, error) {
	var configs []models.SystemConfig
	if err := s.db.Where("config_group = ?", group).Order("config_key").Find(&configs).Error; err != nil {
		return nil, err
	}
	return configs, nil
}

func (s *SystemConfigService) List() ([]models.SystemConfig, error) {
	var configs []models.SystemConfig
	if err := s.db.Order("config_group, config_key").Find(&configs).Error; err != nil {
		return nil, err
	}
	return configs, nil
}

type UpdateSystemConfigRequest struct {
	Values map[string]string `json:"values" binding:"required"`
}

// Update writes several known settings at once. Unknown keys are rejected so
// a typo does not silently create a new row.
func (s *SystemConfigService) Update(req *UpdateSystemConfigRequest) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		txSvc := NewSystemConfigService(tx)
		for key, value := range req.Values {
			if _, err := txSvc.Get(key); err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return errUnknownSetting(key)
				}
				return err
			}
			if err := txSvc.Set(key, value); err != nil {
				return err
			}
		}
		return nil
	})
}

func errUnknownSetting(key string) error {
	return response.NewValidation("unknown setting: " + key)
}
