package repository

import (
	"errors"

	"github.com/sveneberth/viur-shop/internal/constants"
	"github.com/sveneberth/viur-shop/internal/models"

	"gorm.io/gorm"
)

// AdminRepository 管理员数据访问接口
type AdminRepository interface {
	GetByUsername(username string) (*models.Admin, error)
	GetByID(id uint) (*models.Admin, error)
	List() ([]models.Admin, error)
	Create(admin *models.Admin) error
	Update(admin *models.Admin) error
}

// GormAdminRepository GORM 实现
type GormAdminRepository struct {
	db *gorm.DB
}

// NewAdminRepository 创建管理员仓库
func NewAdminRepository(db *gorm.DB) *GormAdminRepository {
	return &GormAdminRepository{db: db}
}

// GetByUsername 根据用户名获取管理员
func (r *GormAdminRepository) GetByUsername(username string) (*models.Admin, error) {
	var admin models.Admin
	if err := r.db.Where("username = ?", username).First(&admin).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &admin, nil
}

// GetByID 根据 ID 获取管理员
func (r *GormAdminRepository) GetByID(id uint) (*models.Admin, error) {
	var admin models.Admin
	if err := r.db.First(&admin, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &admin, nil
}

// List 获取全部管理员
func (r *GormAdminRepository) List() ([]models.Admin, error) {
	var admins []models.Admin
	if err := r.db.Order("id asc").Find(&admins).Error; err != nil {
		return nil, err
	}
	return admins, nil
}

// Create 创建管理员
func (r *GormAdminRepository) Create(admin *models.Admin) error {
	return r.db.Create(admin).Error
}

// Update 更新管理员
func (r *GormAdminRepository) Update(admin *models.Admin) error {
	return r.db.Save(admin).Error
}

// UserRepository 顾客数据访问接口
type UserRepository interface {
	GetByID(id uint) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	Create(user *models.User) error
	Update(user *models.User) error
	SetBasket(userID uint, basketID *uint) error
}

// GormUserRepository GORM 实现
type GormUserRepository struct {
	db *gorm.DB
}

// NewUserRepository 创建顾客仓库
func NewUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

// GetByID 根据 ID 获取顾客
func (r *GormUserRepository) GetByID(id uint) (*models.User, error) {
	var user models.User
	if err := r.db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// GetByEmail 根据邮箱获取顾客
func (r *GormUserRepository) GetByEmail(email string) (*models.User, error) {
	var user models.User
	if err := r.db.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// Create 创建顾客
func (r *GormUserRepository) Create(user *models.User) error {
	return r.db.Create(user).Error
}

// Update 更新顾客
func (r *GormUserRepository) Update(user *models.User) error {
	return r.db.Save(user).Error
}

// SetBasket 记录顾客当前购物车
func (r *GormUserRepository) SetBasket(userID uint, basketID *uint) error {
	return r.db.Model(&models.User{}).Where("id = ?", userID).Update("basket_id", basketID).Error
}

// OrderRepository 订单数据访问接口
type OrderRepository interface {
	Create(order *models.Order) error
	CountByUser(userID uint) (int64, error)
}

// GormOrderRepository GORM 实现
type GormOrderRepository struct {
	db *gorm.DB
}

// NewOrderRepository 创建订单仓库
func NewOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// Create 创建订单
func (r *GormOrderRepository) Create(order *models.Order) error {
	return r.db.Create(order).Error
}

// CountByUser 统计顾客的有效订单数（不含已取消）
func (r *GormOrderRepository) CountByUser(userID uint) (int64, error) {
	var count int64
	if err := r.db.Model(&models.Order{}).Where("user_id = ? AND status <> ?", userID, constants.OrderStatusCanceled).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// AddressRepository 地址数据访问接口
type AddressRepository interface {
	GetByID(id uint) (*models.Address, error)
	Create(address *models.Address) error
}

// GormAddressRepository GORM 实现
type GormAddressRepository struct {
	db *gorm.DB
}

// NewAddressRepository 创建地址仓库
func NewAddressRepository(db *gorm.DB) *GormAddressRepository {
	return &GormAddressRepository{db: db}
}

// GetByID 根据 ID 获取地址
func (r *GormAddressRepository) GetByID(id uint) (*models.Address, error) {
	var address models.Address
	if err := r.db.First(&address, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &address, nil
}

// Create 创建地址
func (r *GormAddressRepository) Create(address *models.Address) error {
	return r.db.Create(address).Error
}
