package storage

import (
	"errors"
	"time"

	"github.com/pageturn-labs/bookrent-backend/internal/models"
)

var storeInstance Store

// SetStore sets the global store instance (call from main.go)
func SetStore(s Store) {
	storeInstance = s
}

// GetStore returns the global store instance
func GetStore() Store {
	return storeInstance
}

// Not-found sentinels shared by both store implementations
var (
	ErrBookNotFound      = errors.New("book not found")
	ErrCategoryNotFound  = errors.New("category not found")
	ErrUserNotFound      = errors.New("user not found")
	ErrRentalNotFound    = errors.New("rental not found")
	ErrContactNotFound   = errors.New("contact not found")
	ErrOrderNotFound     = errors.New("payment order not found")
	ErrAlreadyWishlisted = errors.New("book already in wishlist")
	ErrNotWishlisted     = errors.New("book not in wishlist")
	ErrOutOfStock        = errors.New("book out of stock")
)

// Store defines the interface for storage operations
type Store interface {
	// Book operations
	CreateBook(book *models.Book) (*models.Book, error)
	GetBook(bookID string) (*models.Book, error)
	SearchBooks(search *models.BookSearch) ([]*models.Book, error)
	UpdateBook(book *models.Book) error
	DeleteBook(bookID string) error
	AdjustStock(bookID string, delta int) error

	// Category operations
	CreateCategory(category *models.Category) (*models.Category, error)
	GetCategory(categoryID string) (*models.Category, error)
	GetAllCategories() ([]*models.Category, error)
	UpdateCategory(category *models.Category) error

	// User operations
	CreateUser(user *models.User) (*models.User, error)
	GetUser(userID string) (*models.User, error)
	GetUserByPhone(phone string) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	UpdateUser(user *models.User) error
	GetAllUsers() ([]*models.User, error)

	// Rental operations
	CreateRental(rental *models.Rental) (*models.Rental, error)
	GetRental(rentalID string) (*models.Rental, error)
	GetRentalsByUser(userID string) ([]*models.Rental, error)
	GetRentalsByStatus(status string) ([]*models.Rental, error)
	GetOverdueRentals(asOf time.Time) ([]*models.Rental, error)
	UpdateRental(rental *models.Rental) error
	UpdateRentalStatus(rentalID string, status string) error

	// Wishlist operations
	AddToWishlist(userID, bookID string) (*models.WishlistItem, error)
	RemoveFromWishlist(userID, bookID string) error
	GetWishlist(userID string) ([]*models.WishlistItem, error)

	// Contact operations
	CreateContact(contact *models.Contact) (*models.Contact, error)
	GetAllContacts() ([]*models.Contact, error)
	UpdateContactStatus(contactID string, status string) error

	// Payment order operations
	CreatePaymentOrder(order *models.PaymentOrder) (*models.PaymentOrder, error)
	GetPaymentOrder(orderID string) (*models.PaymentOrder, error)
	GetPaymentOrderByGatewayID(gatewayOrderID string) (*models.PaymentOrder, error)
	UpdatePaymentOrder(order *models.PaymentOrder) error
}
