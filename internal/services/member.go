package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/luneclub/lune/backend/internal/models"
	"github.com/luneclub/lune/backend/internal/utils"
	"github.com/luneclub/lune/backend/pkg/logger"
	"github.com/luneclub/lune/backend/pkg/response"
)

// MemberService is the admin surface over member accounts.
type MemberService struct {
	db      *gorm.DB
	uploads *UploadService
	queue   TaskQueue
}

func NewMemberService(db *gorm.DB, uploads *UploadService, queue TaskQueue) *MemberService {
	return &MemberService{db: db, uploads: uploads, queue: queue}
}

type MemberListRequest struct {
	Page
	Search       string                    `form:"search"`
	Tier         models.MemberTier         `form:"tier" binding:"omitempty,member_tier"`
	Verification models.VerificationStatus `form:"verification" binding:"omitempty,oneof=PENDING APPROVED REJECTED"`
}

// List puts members awaiting verification first, then newest accounts.
func (s *MemberService) List(ctx context.Context, actor Actor, req *MemberListRequest) (*ListResponse[models.Member], error) {
	if err := requireRole(actor, models.RoleAdmin); err != nil {
		return nil, err
	}
	req.normalize(20)

	query := s.db.WithContext(ctx).Model(&models.Member{}).
		Joins("JOIN users ON users.id = members.user_id")
	if req.Search != "" {
		like := "%" + strings.ToLower(req.Search) + "%"
		query = query.Where("LOWER(users.nickname) LIKE ? OR LOWER(users.email) LIKE ?", like, like)
	}
	if req.Tier != "" {
		query = query.Where("members.tier = ?", req.Tier)
	}
	if req.Verification != "" {
		query = query.Where("users.verification_status = ?", req.Verification)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	var items []models.Member
	err := query.
		Preload("User").
		Preload("Photos", orderByDisplay).
		Order("CASE WHEN users.verification_status = 'PENDING' THEN 0 ELSE 1 END, users.created_at DESC, members.id DESC").
		Offset(req.offset()).Limit(req.PageSize).
		Find(&items).Error
	if err != nil {
		return nil, err
	}

	return &ListResponse[models.Member]{
		Total:    total,
		Page:     req.Page.Page,
		PageSize: req.PageSize,
		Items:    items,
	}, nil
}

func (s *MemberService) Get(ctx context.Context, actor Actor, id uint) (*models.Member, error) {
	if err := requireRole(actor, models.RoleAdmin); err != nil {
		return nil, err
	}
	return s.load(s.db.WithContext(ctx), id)
}

func (s *MemberService) load(tx *gorm.DB, id uint) (*models.Member, error) {
	var member models.Member
	if err := tx.Preload("User").Preload("Photos", orderByDisplay).First(&member, id).Error; err != nil {
		return nil, notFoundOr(err, "member not found")
	}
	return &member, nil
}

type CreateMemberRequest struct {
	Email          string            `json:"email" binding:"required,email"`
	Password       string            `json:"password" binding:"required,min=6"`
	Nickname       string            `json:"nickname" binding:"required,max=100"`
	Tier           models.MemberTier `json:"tier" binding:"omitempty,member_tier"`
	IsPaid         bool              `json:"isPaid"`
	Age            *int              `json:"age" binding:"omitempty,min=18,max=120"`
	Location       string            `json:"location" binding:"max=100"`
	Languages      []string          `json:"languages"`
	Occupation     string            `json:"occupation" binding:"max=100"`
	AnnualIncome   *int64            `json:"annualIncome" binding:"omitempty,min=0"`
	IncomeCurrency string            `json:"incomeCurrency" binding:"omitempty,len=3"`
	Bio            map[string]string `json:"bio"`
	Interests      []string          `json:"interests"`
	Hobbies        []string          `json:"hobbies"`
	PhotoURLs      []string          `json:"photoUrls" binding:"dive,url"`
}

// Create adds an already approved member with its photos in one transaction.
func (s *MemberService) Create(ctx context.Context, actor Actor, req *CreateMemberRequest) (*models.Member, error) {
	if err := requireRole(actor, models.RoleAdmin); err != nil {
		return nil, err
	}
	if !utils.ValidPassword(req.Password) {
		return nil, response.NewValidation("password must be at least 6 characters")
	}

	hashed, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}
	bio, err := marshalLocalized(req.Bio)
	if err != nil {
		return nil, err
	}

	tier := req.Tier
	if tier == "" {
		tier = models.TierStandard
	}
	currency := req.IncomeCurrency
	if currency == "" {
		currency = "USD"
	}

	now := timeNow()
	user := models.User{
		Email:              normalizeEmail(req.Email),
		Password:           hashed,
		Nickname:           strings.TrimSpace(req.Nickname),
		Role:               models.RoleMember,
		AuthType:           models.AuthTypeLocal,
		VerificationStatus: models.VerificationApproved,
		VerifiedAt:         &now,
		Locale:             "en",
		IsActive:           true,
	}
	adminID := actor.UserID
	member := models.Member{
		Tier:              tier,
		IsPaid:            req.IsPaid,
		IsActive:          true,
		Age:               req.Age,
		Location:          strings.TrimSpace(req.Location),
		Languages:         stringSlice(req.Languages),
		Occupation:        strings.TrimSpace(req.Occupation),
		AnnualIncome:      req.AnnualIncome,
		IncomeCurrency:    strings.ToUpper(currency),
		Bio:               bio,
		Interests:         stringSlice(req.Interests),
		Hobbies:           stringSlice(req.Hobbies),
		ApprovedByAdminID: &adminID,
		ApprovedAt:        &now,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.User{}).Where("email = ?", user.Email).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return response.NewConflict("email is already registered")
		}
		if err := tx.Create(&user).Error; err != nil {
			if isDuplicateKey(err) {
				return response.NewConflict("email is already registered")
			}
			return err
		}

		member.UserID = user.ID
		if err := tx.Create(&member).Error; err != nil {
			return err
		}
		if err := insertPhotos(tx, member.ID, 0, req.PhotoURLs); err != nil {
			return err
		}
		return recordAdminAction(tx, actor, models.ActionCreateMember, &user.ID,
			fmt.Sprintf("Created member %s (%s)", user.Nickname, user.Email))
	})
	if err != nil {
		return nil, err
	}
	return s.load(s.db.WithContext(ctx), member.ID)
}

// UpdateMemberRequest lists every editable field. Nil means unchanged.
type UpdateMemberRequest struct {
	Email          *string            `json:"email" binding:"omitempty,email"`
	Password       *string            `json:"password" binding:"omitempty,min=6"`
	Nickname       *string            `json:"nickname" binding:"omitempty,max=100"`
	Locale         *string            `json:"locale" binding:"omitempty,oneof=en ja"`
	Tier           *models.MemberTier `json:"tier" binding:"omitempty,member_tier"`
	IsPaid         *bool              `json:"isPaid"`
	IsActive       *bool              `json:"isActive"`
	Age            *int               `json:"age" binding:"omitempty,min=18,max=120"`
	Location       *string            `json:"location" binding:"omitempty,max=100"`
	Languages      *[]string          `json:"languages"`
	Occupation     *string            `json:"occupation" binding:"omitempty,max=100"`
	AnnualIncome   *int64             `json:"annualIncome" binding:"omitempty,min=0"`
	IncomeCurrency *string            `json:"incomeCurrency" binding:"omitempty,len=3"`
	Bio            *map[string]string `json:"bio"`
	Interests      *[]string          `json:"interests"`
	Hobbies        *[]string          `json:"hobbies"`
	Notes          *string            `json:"verificationNotes"`
}

// apply merges the set fields into user and member and reports which
// fields changed.
func (r *UpdateMemberRequest) apply(user *models.User, member *models.Member) ([]string, error) {
	var changed []string
	if r.Email != nil {
		user.Email = normalizeEmail(*r.Email)
		changed = append(changed, "email")
	}
	if r.Password != nil {
		hashed, err := utils.HashPassword(*r.Password)
		if err != nil {
			return nil, err
		}
		user.Password = hashed
		changed = append(changed, "password")
	}
	if r.Nickname != nil {
		user.Nickname = strings.TrimSpace(*r.Nickname)
		changed = append(changed, "nickname")
	}
	if r.Locale != nil {
		user.Locale = *r.Locale
		changed = append(changed, "locale")
	}
	if r.Tier != nil {
		member.Tier = *r.Tier
		changed = append(changed, "tier")
	}
	if r.IsPaid != nil {
		member.IsPaid = *r.IsPaid
		changed = append(changed, "isPaid")
	}
	if r.IsActive != nil {
		member.IsActive = *r.IsActive
		changed = append(changed, "isActive")
	}
	if r.Age != nil {
		member.Age = r.Age
		changed = append(changed, "age")
	}
	if r.Location != nil {
		member.Location = strings.TrimSpace(*r.Location)
		changed = append(changed, "location")
	}
	if r.Languages != nil {
		member.Languages = stringSlice(*r.Languages)
		changed = append(changed, "languages")
	}
	if r.Occupation != nil {
		member.Occupation = strings.TrimSpace(*r.Occupation)
		changed = append(changed, "occupation")
	}
	if r.AnnualIncome != nil {
		member.AnnualIncome = r.AnnualIncome
		changed = append(changed, "annualIncome")
	}
	if r.IncomeCurrency != nil {
		member.IncomeCurrency = strings.ToUpper(*r.IncomeCurrency)
		changed = append(changed, "incomeCurrency")
	}
	if r.Bio != nil {
		bio, err := marshalLocalized(*r.Bio)
		if err != nil {
			return nil, err
		}
		member.Bio = bio
		changed = append(changed, "bio")
	}
	if r.Interests != nil {
		member.Interests = stringSlice(*r.Interests)
		changed = append(changed, "interests")
	}
	if r.Hobbies != nil {
		member.Hobbies = stringSlice(*r.Hobbies)
		changed = append(changed, "hobbies")
	}
	if r.Notes != nil {
		member.VerificationNotes = *r.Notes
		changed = append(changed, "verificationNotes")
	}
	return changed, nil
}

func (s *MemberService) Update(ctx context.Context, actor Actor, id uint, req *UpdateMemberRequest) (*models.Member, error) {
	if err := requireRole(actor, models.RoleAdmin); err != nil {
		return nil, err
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		member, err := s.load(tx, id)
		if err != nil {
			return err
		}
		user := member.User
		if user == nil {
			return response.NewNotFound("member account not found")
		}

		changed, err := req.apply(user, member)
		if err != nil {
			return err
		}
		if len(changed) == 0 {
			return nil
		}

		if req.Email != nil {
			var count int64
			if err := tx.Model(&models.User{}).Where("email = ? AND id <> ?", user.Email, user.ID).Count(&count).Error; err != nil {
				return err
			}
			if count > 0 {
				return response.NewConflict("email is already registered")
			}
		}

		if err := tx.Omit(clause.Associations).Save(user).Error; err != nil {
			if isDuplicateKey(err) {
				return response.NewConflict("email is already registered")
			}
			return err
		}
		if err := tx.Omit(clause.Associations).Save(member).Error; err != nil {
			return err
		}
		return recordAdminAction(tx, actor, models.ActionUpdateMember, &user.ID,
			fmt.Sprintf("Updated member %s: %s", user.Nickname, strings.Join(changed, ", ")))
	})
	if err != nil {
		return nil, err
	}
	return s.load(s.db.WithContext(ctx), id)
}

// Delete removes the member, its user and everything hanging off the
// profile. Stored photo files are purged in the background.
func (s *MemberService) Delete(ctx context.Context, actor Actor, id uint) error {
	if err := requireRole(actor, models.RoleAdmin); err != nil {
		return err
	}

	var keys []string
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		member, err := s.load(tx, id)
		if err != nil {
			return err
		}
		keys = photoKeys(member.Photos)

		if err := tx.Where("member_id = ?", member.ID).Delete(&models.MemberPhoto{}).Error; err != nil {
			return err
		}
		if err := tx.Where("member_id = ?", member.ID).Delete(&models.Bookmark{}).Error; err != nil {
			return err
		}
		if err := tx.Where("member_id = ?", member.ID).Delete(&models.MeetingRequest{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", member.UserID).Delete(&models.RefreshToken{}).Error; err != nil {
			return err
		}
		if err := tx.Delete(&models.Member{}, member.ID).Error; err != nil {
			return err
		}
		if err := tx.Delete(&models.User{}, member.UserID).Error; err != nil {
			return err
		}

		label := fmt.Sprintf("member #%d", member.ID)
		if member.User != nil {
			label = fmt.Sprintf("%s (%s)", member.User.Nickname, member.User.Email)
		}
		return recordAdminAction(tx, actor, models.ActionDeleteMember, &member.UserID, "Deleted member "+label)
	})
	if err != nil {
		return err
	}
	s.purge(keys, "member deleted")
	return nil
}

// Approve marks the member's account verified. Approval metadata is written
// once and never overwritten.
func (s *MemberService) Approve(ctx context.Context, actor Actor, id uint) (*models.Member, error) {
	if err := requireRole(actor, models.RoleAdmin); err != nil {
		return nil, err
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		member, err := s.load(tx, id)
		if err != nil {
			return err
		}
		if member.User == nil {
			return response.NewNotFound("member account not found")
		}
		if member.User.VerificationStatus == models.VerificationApproved {
			return response.NewInvalidState("member is already approved")
		}

		now := timeNow()
		if err := tx.Model(&models.User{}).Where("id = ?", member.UserID).
			Updates(map[string]interface{}{
				"verification_status": models.VerificationApproved,
				"verified_at":         now,
			}).Error; err != nil {
			return err
		}
		if member.ApprovedAt == nil {
			if err := tx.Model(&models.Member{}).Where("id = ? AND approved_at IS NULL", member.ID).
				Updates(map[string]interface{}{
					"approved_by_admin_id": actor.UserID,
					"approved_at":          now,
				}).Error; err != nil {
				return err
			}
		}
		return recordAdminAction(tx, actor, models.ActionApproveMember, &member.UserID,
			"Approved member "+member.User.Nickname)
	})
	if err != nil {
		return nil, err
	}
	return s.load(s.db.WithContext(ctx), id)
}

func (s *MemberService) ToggleActive(ctx context.Context, actor Actor, id uint) (*models.Member, error) {
	return s.toggle(ctx, actor, id, "is_active", func(m *models.Member) (bool, string, string) {
		if m.IsActive {
			return false, models.ActionDeactivateMember, "Deactivated"
		}
		return true, models.ActionActivateMember, "Activated"
	})
}

func (s *MemberService) TogglePayment(ctx context.Context, actor Actor, id uint) (*models.Member, error) {
	return s.toggle(ctx, actor, id, "is_paid", func(m *models.Member) (bool, string, string) {
		if m.IsPaid {
			return false, models.ActionToggleMemberPayment, "Marked unpaid"
		}
		return true, models.ActionToggleMemberPayment, "Marked paid"
	})
}

func (s *MemberService) toggle(ctx context.Context, actor Actor, id uint, column string, flip func(*models.Member) (bool, string, string)) (*models.Member, error) {
	if err := requireRole(actor, models.RoleAdmin); err != nil {
		return nil, err
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		member, err := s.load(tx, id)
		if err != nil {
			return err
		}
		value, action, verb := flip(member)
		if err := tx.Model(&models.Member{}).Where("id = ?", member.ID).
			Updates(map[string]interface{}{column: value, "updated_at": timeNow()}).Error; err != nil {
			return err
		}
		return recordAdminAction(tx, actor, action, &member.UserID,
			fmt.Sprintf("%s member %s", verb, memberLabel(member)))
	})
	if err != nil {
		return nil, err
	}
	return s.load(s.db.WithContext(ctx), id)
}

// --- Photos ---

type AddPhotosRequest struct {
	PhotoURLs []string `json:"photoUrls" binding:"required,min=1,dive,url"`
}

// AddPhotos appends photos given by URL after the existing ones.
func (s *MemberService) AddPhotos(ctx context.Context, actor Actor, id uint, urls []string) ([]models.MemberPhoto, error) {
	if err := requireRole(actor, models.RoleAdmin); err != nil {
		return nil, err
	}
	if len(urls) == 0 {
		return nil, response.NewValidation("photoUrls must not be empty")
	}

	var photos []models.MemberPhoto
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		member, err := s.load(tx, id)
		if err != nil {
			return err
		}
		if err := insertPhotos(tx, member.ID, len(member.Photos), urls); err != nil {
			return err
		}
		if err := recordAdminAction(tx, actor, models.ActionAddMemberPhotos, &member.UserID,
			fmt.Sprintf("Added %d photo(s) to member %s", len(urls), memberLabel(member))); err != nil {
			return err
		}
		return tx.Where("member_id = ?", member.ID).Scopes(orderByDisplay).Find(&photos).Error
	})
	return photos, err
}

// UploadPhoto stores an image and attaches it as the member's last photo.
func (s *MemberService) UploadPhoto(ctx context.Context, actor Actor, id uint, file *FileUpload) (*models.MemberPhoto, error) {
	if err := requireRole(actor, models.RoleAdmin); err != nil {
		return nil, err
	}
	if file == nil {
		return nil, response.NewValidation("file is required")
	}

	member, err := s.load(s.db.WithContext(ctx), id)
	if err != nil {
		return nil, err
	}

	saved, err := s.uploads.Save(ctx, fmt.Sprintf("members/%d/photos", member.ID), file.Filename, file.Size, file.Reader, KindPhoto)
	if err != nil {
		return nil, err
	}

	photo := models.MemberPhoto{
		MemberID:     member.ID,
		PhotoURL:     saved.URL,
		StorageKey:   saved.Key,
		DisplayOrder: len(member.Photos),
		CreatedAt:    timeNow(),
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&photo).Error; err != nil {
			return err
		}
		return recordAdminAction(tx, actor, models.ActionUploadMemberPhoto, &member.UserID,
			"Uploaded photo for member "+memberLabel(member))
	})
	if err != nil {
		s.purge([]string{saved.Key}, "photo insert failed")
		return nil, err
	}
	return &photo, nil
}

type ReorderPhotosRequest struct {
	PhotoIDs []uint `json:"photoIds" binding:"required,min=1"`
}

// ReorderPhotos sets display order from the position in photoIDs. The list
// must name each of the member's photos exactly once.
func (s *MemberService) ReorderPhotos(ctx context.Context, actor Actor, id uint, photoIDs []uint) ([]models.MemberPhoto, error) {
	if err := requireRole(actor, models.RoleAdmin); err != nil {
		return nil, err
	}

	var photos []models.MemberPhoto
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		member, err := s.load(tx, id)
		if err != nil {
			return err
		}

		owned := make(map[uint]bool, len(member.Photos))
		for _, p := range member.Photos {
			owned[p.ID] = true
		}
		if len(photoIDs) != len(owned) {
			return response.NewValidation("photoIds must list every photo of the member")
		}
		seen := make(map[uint]bool, len(photoIDs))
		for _, pid := range photoIDs {
			if !owned[pid] || seen[pid] {
				return response.NewValidation(fmt.Sprintf("photo %d does not belong to this member or is repeated", pid))
			}
			seen[pid] = true
		}

		for i, pid := range photoIDs {
			if err := tx.Model(&models.MemberPhoto{}).Where("id = ?", pid).Update("display_order", i).Error; err != nil {
				return err
			}
		}
		if err := recordAdminAction(tx, actor, models.ActionReorderMemberPhotos, &member.UserID,
			"Reordered photos of member "+memberLabel(member)); err != nil {
			return err
		}
		return tx.Where("member_id = ?", member.ID).Scopes(orderByDisplay).Find(&photos).Error
	})
	return photos, err
}

func (s *MemberService) findPhoto(tx *gorm.DB, memberID, photoID uint) (*models.Member, *models.MemberPhoto, error) {
	member, err := s.load(tx, memberID)
	if err != nil {
		return nil, nil, err
	}
	for i := range member.Photos {
		if member.Photos[i].ID == photoID {
			return member, &member.Photos[i], nil
		}
	}
	return nil, nil, response.NewNotFound("photo not found")
}

// VerifyPhoto marks one photo as checked by staff.
func (s *MemberService) VerifyPhoto(ctx context.Context, actor Actor, id, photoID uint) (*models.MemberPhoto, error) {
	if err := requireRole(actor, models.RoleAdmin); err != nil {
		return nil, err
	}

	var photo *models.MemberPhoto
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		member, p, err := s.findPhoto(tx, id, photoID)
		if err != nil {
			return err
		}
		if p.IsVerified {
			return response.NewInvalidState("photo is already verified")
		}
		if err := tx.Model(p).Update("is_verified", true).Error; err != nil {
			return err
		}
		p.IsVerified = true
		photo = p
		return recordAdminAction(tx, actor, models.ActionVerifyMemberPhoto, &member.UserID,
			fmt.Sprintf("Verified photo #%d of member %s", p.ID, memberLabel(member)))
	})
	return photo, err
}

// DeletePhoto removes one photo and closes the gap in display order.
func (s *MemberService) DeletePhoto(ctx context.Context, actor Actor, id, photoID uint) error {
	if err := requireRole(actor, models.RoleAdmin); err != nil {
		return err
	}

	var key string
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		member, p, err := s.findPhoto(tx, id, photoID)
		if err != nil {
			return err
		}
		key = p.StorageKey
		if err := tx.Delete(&models.MemberPhoto{}, p.ID).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.MemberPhoto{}).
			Where("member_id = ? AND display_order > ?", member.ID, p.DisplayOrder).
			Update("display_order", gorm.Expr("display_order - 1")).Error; err != nil {
			return err
		}
		return recordAdminAction(tx, actor, models.ActionDeleteMemberPhoto, &member.UserID,
			fmt.Sprintf("Deleted photo #%d of member %s", p.ID, memberLabel(member)))
	})
	if err != nil {
		return err
	}
	if key != "" {
		s.purge([]string{key}, "photo deleted")
	}
	return nil
}

// TempUpload stores a file before the member record exists, for the admin
// create form. PDFs are accepted alongside images.
func (s *MemberService) TempUpload(ctx context.Context, actor Actor, file *FileUpload) (*StoredFile, error) {
	if err := requireRole(actor, models.RoleAdmin); err != nil {
		return nil, err
	}
	if file == nil {
		return nil, response.NewValidation("file is required")
	}
	return s.uploads.Save(ctx, "temp", file.Filename, file.Size, file.Reader, KindDocument)
}

func (s *MemberService) purge(keys []string, reason string) {
	if len(keys) == 0 || s.queue == nil {
		return
	}
	if err := s.queue.Enqueue(&BlobPurgeTask{Keys: keys, Reason: reason}); err != nil {
		logger.Error().Err(err).Strs("keys", keys).Msg("failed to enqueue blob purge")
	}
}

func insertPhotos(tx *gorm.DB, memberID uint, startOrder int, urls []string) error {
	if len(urls) == 0 {
		return nil
	}
	photos := make([]models.MemberPhoto, 0, len(urls))
	for i, u := range urls {
		photos = append(photos, models.MemberPhoto{
			MemberID:     memberID,
			PhotoURL:     u,
			DisplayOrder: startOrder + i,
			CreatedAt:    timeNow(),
		})
	}
	return tx.Create(&photos).Error
}

func photoKeys(photos []models.MemberPhoto) []string {
	var keys []string
	for _, p := range photos {
		if p.StorageKey != "" {
			keys = append(keys, p.StorageKey)
		}
	}
	return keys
}

func memberLabel(m *models.Member) string {
	if m.User != nil && m.User.Nickname != "" {
		return m.User.Nickname
	}
	return fmt.Sprintf("#%d", m.ID)
}

func stringSlice(in []string) datatypes.JSONSlice[string] {
	out := make([]string, 0, len(in))
	for _, v := range in {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return datatypes.NewJSONSlice(out)
}

// marshalLocalized encodes a {"en": ..., "ja": ...} text map. Nil stays nil.
func marshalLocalized(m map[string]string) (datatypes.JSON, error) {
	if m == nil {
		return nil, nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return nil, response.NewValidation("invalid localized text")
	}
	return datatypes.JSON(b), nil
}
