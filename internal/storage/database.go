package storage

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/pageturn-labs/bookrent-backend/internal/models"
)

// DatabaseStore persists everything through GORM/PostgreSQL
type DatabaseStore struct {
	db *gorm.DB
}

// NewDatabaseStore creates a database-backed store
func NewDatabaseStore(db *gorm.DB) *DatabaseStore {
	return &DatabaseStore{db: db}
}

func notFound(err error, sentinel error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return sentinel
	}
	return err
}

// Book operations

func (d *DatabaseStore) CreateBook(book *models.Book) (*models.Book, error) {
	if err := d.db.Create(book).Error; err != nil {
		return nil, err
	}
	return book, nil
}

func (d *DatabaseStore) GetBook(bookID string) (*models.Book, error) {
	var book models.Book
	if err := d.db.Where("book_id = ?", bookID).First(&book).Error; err != nil {
		return nil, notFound(err, ErrBookNotFound)
	}
	return &book, nil
}

func (d *DatabaseStore) SearchBooks(search *models.BookSearch) ([]*models.Book, error) {
	query := d.db.Where("active = ?", true)
	if search != nil {
		if search.CategoryID != "" {
			query = query.Where("category_id = ?", search.CategoryID)
		}
		if search.Author != "" {
			query = query.Where("LOWER(author) = LOWER(?)", search.Author)
		}
		if search.Query != "" {
			pattern := "%" + search.Query + "%"
			query = query.Where("title ILIKE ? OR author ILIKE ?", pattern, pattern)
		}
	}

	var books []*models.Book
	if err := query.Find(&books).Error; err != nil {
		return nil, err
	}
	return books, nil
}

func (d *DatabaseStore) UpdateBook(book *models.Book) error {
	return d.db.Save(book).Error
}

func (d *DatabaseStore) DeleteBook(bookID string) error {
	result := d.db.Where("book_id = ?", bookID).Delete(&models.Book{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrBookNotFound
	}
	return nil
}

func (d *DatabaseStore) AdjustStock(bookID string, delta int) error {
	// Guard against oversell inside a single transaction
	return d.db.Transaction(func(tx *gorm.DB) error {
		var book models.Book
		if err := tx.Where("book_id = ?", bookID).First(&book).Error; err != nil {
			return notFound(err, ErrBookNotFound)
		}
		if book.Stock+delta < 0 {
			return ErrOutOfStock
		}
		return tx.Model(&book).Update("stock", book.Stock+delta).Error
	})
}

// Category operations

func (d *DatabaseStore) CreateCategory(category *models.Category) (*models.Category, error) {
	if err := d.db.Create(category).Error; err != nil {
		return nil, err
	}
	return category, nil
}

func (d *DatabaseStore) GetCategory(categoryID string) (*models.Category, error) {
	var category models.Category
	if err := d.db.Where("category_id = ?", categoryID).First(&category).Error; err != nil {
		return nil, notFound(err, ErrCategoryNotFound)
	}
	return &category, nil
}

func (d *DatabaseStore) GetAllCategories() ([]*models.Category, error) {
	var categories []*models.Category
	if err := d.db.Order("name").Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

func (d *DatabaseStore) UpdateCategory(category *models.Category) error {
	return d.db.Save(category).Error
}

// User operations

func (d *DatabaseStore) CreateUser(user *models.User) (*models.User, error) {
	if err := d.db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

func (d *DatabaseStore) GetUser(userID string) (*models.User, error) {
	var user models.User
	if err := d.db.Where("user_id = ?", userID).First(&user).Error; err != nil {
		return nil, notFound(err, ErrUserNotFound)
	}
	return &user, nil
}

func (d *DatabaseStore) GetUserByPhone(phone string) (*models.User, error) {
	var user models.User
	if err := d.db.Where("phone = ?", phone).First(&user).Error; err != nil {
		return nil, notFound(err, ErrUserNotFound)
	}
	return &user, nil
}

func (d *DatabaseStore) GetUserByEmail(email string) (*models.User, error) {
	var user models.User
	if err := d.db.Where("LOWER(email) = LOWER(?)", email).First(&user).Error; err != nil {
		return nil, notFound(err, ErrUserNotFound)
	}
	return &user, nil
}

func (d *DatabaseStore) UpdateUser(user *models.User) error {
	return d.db.Save(user).Error
}

func (d *DatabaseStore) GetAllUsers() ([]*models.User, error) {
	var users []*models.User
	if err := d.db.Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// Rental operations

func (d *DatabaseStore) CreateRental(rental *models.Rental) (*models.Rental, error) {
	if err := d.db.Create(rental).Error; err != nil {
		return nil, err
	}
	return rental, nil
}

func (d *DatabaseStore) GetRental(rentalID string) (*models.Rental, error) {
	var rental models.Rental
	if err := d.db.Preload("Items").Where("rental_id = ?", rentalID).First(&rental).Error; err != nil {
		return nil, notFound(err, ErrRentalNotFound)
	}
	return &rental, nil
}

func (d *DatabaseStore) GetRentalsByUser(userID string) ([]*models.Rental, error) {
	var rentals []*models.Rental
	if err := d.db.Preload("Items").Where("user_id = ?", userID).Order("created_at DESC").Find(&rentals).Error; err != nil {
		return nil, err
	}
	return rentals, nil
}

func (d *DatabaseStore) GetRentalsByStatus(status string) ([]*models.Rental, error) {
	var rentals []*models.Rental
	if err := d.db.Preload("Items").Where("status = ?", status).Find(&rentals).Error; err != nil {
		return nil, err
	}
	return rentals, nil
}

func (d *DatabaseStore) GetOverdueRentals(asOf time.Time) ([]*models.Rental, error) {
	var rentals []*models.Rental
	err := d.db.Preload("Items").
		Where("due_at IS NOT NULL AND due_at < ? AND status NOT IN ?",
			asOf, []string{models.RentalStatusReturned, models.RentalStatusCancelled}).
		Find(&rentals).Error
	if err != nil {
		return nil, err
	}
	return rentals, nil
}

func (d *DatabaseStore) UpdateRental(rental *models.Rental) error {
	return d.db.Save(rental).Error
}

func (d *DatabaseStore) UpdateRentalStatus(rentalID string, status string) error {
	updates := map[string]interface{}{"status": status}
	now := time.Now()
	switch status {
	case models.RentalStatusDelivered:
		updates["delivered_at"] = &now
	case models.RentalStatusReturned:
		updates["returned_at"] = &now
	}

	result := d.db.Model(&models.Rental{}).Where("rental_id = ?", rentalID).Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrRentalNotFound
	}
	return nil
}

// Wishlist operations

func (d *DatabaseStore) AddToWishlist(userID, bookID string) (*models.WishlistItem, error) {
	var existing models.WishlistItem
	err := d.db.Where("user_id = ? AND book_id = ?", userID, bookID).First(&existing).Error
	if err == nil {
		return nil, ErrAlreadyWishlisted
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	item := &models.WishlistItem{UserID: userID, BookID: bookID}
	if err := d.db.Create(item).Error; err != nil {
		return nil, err
	}
	return item, nil
}

func (d *DatabaseStore) RemoveFromWishlist(userID, bookID string) error {
	result := d.db.Where("user_id = ? AND book_id = ?", userID, bookID).Delete(&models.WishlistItem{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotWishlisted
	}
	return nil
}

func (d *DatabaseStore) GetWishlist(userID string) ([]*models.WishlistItem, error) {
	var items []*models.WishlistItem
	if err := d.db.Where("user_id = ?", userID).Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// Contact operations

func (d *DatabaseStore) CreateContact(contact *models.Contact) (*models.Contact, error) {
	if err := d.db.Create(contact).Error; err != nil {
		return nil, err
	}
	return contact, nil
}

func (d *DatabaseStore) GetAllContacts() ([]*models.Contact, error) {
	var contacts []*models.Contact
	if err := d.db.Order("created_at DESC").Find(&contacts).Error; err != nil {
		return nil, err
	}
	return contacts, nil
}

func (d *DatabaseStore) UpdateContactStatus(contactID string, status string) error {
	result := d.db.Model(&models.Contact{}).Where("contact_id = ?", contactID).Update("status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrContactNotFound
	}
	return nil
}

// Payment order operations

func (d *DatabaseStore) CreatePaymentOrder(order *models.PaymentOrder) (*models.PaymentOrder, error) {
	if err := d.db.Create(order).Error; err != nil {
		return nil, err
	}
	return order, nil
}

func (d *DatabaseStore) GetPaymentOrder(orderID string) (*models.PaymentOrder, error) {
	var order models.PaymentOrder
	if err := d.db.Where("order_id = ?", orderID).First(&order).Error; err != nil {
		return nil, notFound(err, ErrOrderNotFound)
	}
	return &order, nil
}

func (d *DatabaseStore) GetPaymentOrderByGatewayID(gatewayOrderID string) (*models.PaymentOrder, error) {
	var order models.PaymentOrder
	if err := d.db.Where("gateway_order_id = ?", gatewayOrderID).First(&order).Error; err != nil {
		return nil, notFound(err, ErrOrderNotFound)
	}
	return &order, nil
}

func (d *DatabaseStore) UpdatePaymentOrder(order *models.PaymentOrder) error {
	return d.db.Save(order).Error
}
