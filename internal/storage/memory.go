package storage

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/pageturn-labs/bookrent-backend/internal/models"
)

// MemoryStore holds all data in memory, for tests and local development
type MemoryStore struct {
	books      map[string]*models.Book
	categories map[string]*models.Category
	users      map[string]*models.User
	rentals    map[string]*models.Rental
	wishlists  map[string][]*models.WishlistItem // keyed by user ID
	contacts   map[string]*models.Contact
	orders     map[string]*models.PaymentOrder

	// Mutexes for thread safety
	bookMu     sync.RWMutex
	categoryMu sync.RWMutex
	userMu     sync.RWMutex
	rentalMu   sync.RWMutex
	wishlistMu sync.RWMutex
	contactMu  sync.RWMutex
	orderMu    sync.RWMutex

	// Counters for ID generation
	bookCounter     int
	categoryCounter int
	userCounter     int
	rentalCounter   int
	contactCounter  int
	orderCounter    int
}

// NewMemoryStore creates a new in-memory storage
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		books:      make(map[string]*models.Book),
		categories: make(map[string]*models.Category),
		users:      make(map[string]*models.User),
		rentals:    make(map[string]*models.Rental),
		wishlists:  make(map[string][]*models.WishlistItem),
		contacts:   make(map[string]*models.Contact),
		orders:     make(map[string]*models.PaymentOrder),
	}
}

// Book operations

func (m *MemoryStore) CreateBook(book *models.Book) (*models.Book, error) {
	m.bookMu.Lock()
	defer m.bookMu.Unlock()

	m.bookCounter++
	if book.BookID == "" {
		book.BookID = fmt.Sprintf("BK%05d", m.bookCounter)
	}
	book.Active = true
	book.CreatedAt = time.Now()
	book.UpdatedAt = time.Now()

	m.books[book.BookID] = book
	return book, nil
}

func (m *MemoryStore) GetBook(bookID string) (*models.Book, error) {
	m.bookMu.RLock()
	defer m.bookMu.RUnlock()

	book, exists := m.books[bookID]
	if !exists {
		return nil, ErrBookNotFound
	}
	return book, nil
}

func (m *MemoryStore) SearchBooks(search *models.BookSearch) ([]*models.Book, error) {
	m.bookMu.RLock()
	defer m.bookMu.RUnlock()

	var results []*models.Book
	for _, book := range m.books {
		if !book.Active {
			continue
		}
		if search != nil {
			if search.CategoryID != "" && book.CategoryID != search.CategoryID {
				continue
			}
			if search.Author != "" && !strings.EqualFold(book.Author, search.Author) {
				continue
			}
			if search.Query != "" {
				q := strings.ToLower(search.Query)
				if !strings.Contains(strings.ToLower(book.Title), q) &&
					!strings.Contains(strings.ToLower(book.Author), q) {
					continue
				}
			}
		}
		results = append(results, book)
	}
	return results, nil
}

func (m *MemoryStore) UpdateBook(book *models.Book) error {
	m.bookMu.Lock()
	defer m.bookMu.Unlock()

	if _, exists := m.books[book.BookID]; !exists {
		return ErrBookNotFound
	}
	book.UpdatedAt = time.Now()
	m.books[book.BookID] = book
	return nil
}

func (m *MemoryStore) DeleteBook(bookID string) error {
	m.bookMu.Lock()
	defer m.bookMu.Unlock()

	if _, exists := m.books[bookID]; !exists {
		return ErrBookNotFound
	}
	delete(m.books, bookID)
	return nil
}

func (m *MemoryStore) AdjustStock(bookID string, delta int) error {
	m.bookMu.Lock()
	defer m.bookMu.Unlock()

	book, exists := m.books[bookID]
	if !exists {
		return ErrBookNotFound
	}
	if book.Stock+delta < 0 {
		return ErrOutOfStock
	}
	book.Stock += delta
	book.UpdatedAt = time.Now()
	return nil
}

// Category operations

func (m *MemoryStore) CreateCategory(category *models.Category) (*models.Category, error) {
	m.categoryMu.Lock()
	defer m.categoryMu.Unlock()

	m.categoryCounter++
	if category.CategoryID == "" {
		category.CategoryID = fmt.Sprintf("CAT%03d", m.categoryCounter)
	}
	category.CreatedAt = time.Now()
	category.UpdatedAt = time.Now()

	m.categories[category.CategoryID] = category
	return category, nil
}

func (m *MemoryStore) GetCategory(categoryID string) (*models.Category, error) {
	m.categoryMu.RLock()
	defer m.categoryMu.RUnlock()

	category, exists := m.categories[categoryID]
	if !exists {
		return nil, ErrCategoryNotFound
	}
	return category, nil
}

func (m *MemoryStore) GetAllCategories() ([]*models.Category, error) {
	m.categoryMu.RLock()
	defer m.categoryMu.RUnlock()

	var categories []*models.Category
	for _, category := range m.categories {
		categories = append(categories, category)
	}
	return categories, nil
}

func (m *MemoryStore) UpdateCategory(category *models.Category) error {
	m.categoryMu.Lock()
	defer m.categoryMu.Unlock()

	if _, exists := m.categories[category.CategoryID]; !exists {
		return ErrCategoryNotFound
	}
	category.UpdatedAt = time.Now()
	m.categories[category.CategoryID] = category
	return nil
}

// User operations

func (m *MemoryStore) CreateUser(user *models.User) (*models.User, error) {
	m.userMu.Lock()
	defer m.userMu.Unlock()

	m.userCounter++
	if user.UserID == "" {
		user.UserID = fmt.Sprintf("US%05d", m.userCounter)
	}
	if user.Role == "" {
		user.Role = models.RoleCustomer
	}
	user.Active = true
	user.CreatedAt = time.Now()
	user.UpdatedAt = time.Now()

	m.users[user.UserID] = user
	return user, nil
}

func (m *MemoryStore) GetUser(userID string) (*models.User, error) {
	m.userMu.RLock()
	defer m.userMu.RUnlock()

	user, exists := m.users[userID]
	if !exists {
		return nil, ErrUserNotFound
	}
	return user, nil
}

func (m *MemoryStore) GetUserByPhone(phone string) (*models.User, error) {
	m.userMu.RLock()
	defer m.userMu.RUnlock()

	for _, user := range m.users {
		if user.Phone == phone {
			return user, nil
		}
	}
	return nil, ErrUserNotFound
}

func (m *MemoryStore) GetUserByEmail(email string) (*models.User, error) {
	m.userMu.RLock()
	defer m.userMu.RUnlock()

	for _, user := range m.users {
		if user.Email != "" && strings.EqualFold(user.Email, email) {
			return user, nil
		}
	}
	return nil, ErrUserNotFound
}

func (m *MemoryStore) UpdateUser(user *models.User) error {
	m.userMu.Lock()
	defer m.userMu.Unlock()

	if _, exists := m.users[user.UserID]; !exists {
		return ErrUserNotFound
	}
	user.UpdatedAt = time.Now()
	m.users[user.UserID] = user
	return nil
}

func (m *MemoryStore) GetAllUsers() ([]*models.User, error) {
	m.userMu.RLock()
	defer m.userMu.RUnlock()

	var users []*models.User
	for _, user := range m.users {
		users = append(users, user)
	}
	return users, nil
}

// Rental operations

func (m *MemoryStore) CreateRental(rental *models.Rental) (*models.Rental, error) {
	m.rentalMu.Lock()
	defer m.rentalMu.Unlock()

	m.rentalCounter++
	if rental.RentalID == "" {
		rental.RentalID = fmt.Sprintf("RN%05d", m.rentalCounter)
	}
	if rental.Status == "" {
		rental.Status = models.RentalStatusPending
	}
	if rental.PaymentStatus == "" {
		rental.PaymentStatus = models.PaymentStatusPending
	}
	for i := range rental.Items {
		rental.Items[i].RentalID = rental.RentalID
	}
	rental.CreatedAt = time.Now()
	rental.UpdatedAt = time.Now()

	m.rentals[rental.RentalID] = rental
	return rental, nil
}

func (m *MemoryStore) GetRental(rentalID string) (*models.Rental, error) {
	m.rentalMu.RLock()
	defer m.rentalMu.RUnlock()

	rental, exists := m.rentals[rentalID]
	if !exists {
		return nil, ErrRentalNotFound
	}
	return rental, nil
}

func (m *MemoryStore) GetRentalsByUser(userID string) ([]*models.Rental, error) {
	m.rentalMu.RLock()
	defer m.rentalMu.RUnlock()

	var rentals []*models.Rental
	for _, rental := range m.rentals {
		if rental.UserID == userID {
			rentals = append(rentals, rental)
		}
	}
	return rentals, nil
}

func (m *MemoryStore) GetRentalsByStatus(status string) ([]*models.Rental, error) {
	m.rentalMu.RLock()
	defer m.rentalMu.RUnlock()

	var rentals []*models.Rental
	for _, rental := range m.rentals {
		if rental.Status == status {
			rentals = append(rentals, rental)
		}
	}
	return rentals, nil
}

func (m *MemoryStore) GetOverdueRentals(asOf time.Time) ([]*models.Rental, error) {
	m.rentalMu.RLock()
	defer m.rentalMu.RUnlock()

	var rentals []*models.Rental
	for _, rental := range m.rentals {
		if rental.IsOverdue(asOf) {
			rentals = append(rentals, rental)
		}
	}
	return rentals, nil
}

func (m *MemoryStore) UpdateRental(rental *models.Rental) error {
	m.rentalMu.Lock()
	defer m.rentalMu.Unlock()

	if _, exists := m.rentals[rental.RentalID]; !exists {
		return ErrRentalNotFound
	}
	rental.UpdatedAt = time.Now()
	m.rentals[rental.RentalID] = rental
	return nil
}

func (m *MemoryStore) UpdateRentalStatus(rentalID string, status string) error {
	m.rentalMu.Lock()
	defer m.rentalMu.Unlock()

	rental, exists := m.rentals[rentalID]
	if !exists {
		return ErrRentalNotFound
	}
	rental.Status = status
	now := time.Now()
	switch status {
	case models.RentalStatusDelivered:
		rental.DeliveredAt = &now
	case models.RentalStatusReturned:
		rental.ReturnedAt = &now
	}
	rental.UpdatedAt = now
	return nil
}

// Wishlist operations

func (m *MemoryStore) AddToWishlist(userID, bookID string) (*models.WishlistItem, error) {
	m.wishlistMu.Lock()
	defer m.wishlistMu.Unlock()

	for _, item := range m.wishlists[userID] {
		if item.BookID == bookID {
			return nil, ErrAlreadyWishlisted
		}
	}

	item := &models.WishlistItem{UserID: userID, BookID: bookID}
	item.CreatedAt = time.Now()
	m.wishlists[userID] = append(m.wishlists[userID], item)
	return item, nil
}

func (m *MemoryStore) RemoveFromWishlist(userID, bookID string) error {
	m.wishlistMu.Lock()
	defer m.wishlistMu.Unlock()

	items := m.wishlists[userID]
	for i, item := range items {
		if item.BookID == bookID {
			m.wishlists[userID] = append(items[:i], items[i+1:]...)
			return nil
		}
	}
	return ErrNotWishlisted
}

func (m *MemoryStore) GetWishlist(userID string) ([]*models.WishlistItem, error) {
	m.wishlistMu.RLock()
	defer m.wishlistMu.RUnlock()

	return m.wishlists[userID], nil
}

// Contact operations

func (m *MemoryStore) CreateContact(contact *models.Contact) (*models.Contact, error) {
	m.contactMu.Lock()
	defer m.contactMu.Unlock()

	m.contactCounter++
	if contact.ContactID == "" {
		contact.ContactID = fmt.Sprintf("CT%05d", m.contactCounter)
	}
	if contact.Status == "" {
		contact.Status = models.ContactStatusOpen
	}
	contact.CreatedAt = time.Now()

	m.contacts[contact.ContactID] = contact
	return contact, nil
}

func (m *MemoryStore) GetAllContacts() ([]*models.Contact, error) {
	m.contactMu.RLock()
	defer m.contactMu.RUnlock()

	var contacts []*models.Contact
	for _, contact := range m.contacts {
		contacts = append(contacts, contact)
	}
	return contacts, nil
}

func (m *MemoryStore) UpdateContactStatus(contactID string, status string) error {
	m.contactMu.Lock()
	defer m.contactMu.Unlock()

	contact, exists := m.contacts[contactID]
	if !exists {
		return ErrContactNotFound
	}
	contact.Status = status
	contact.UpdatedAt = time.Now()
	return nil
}

// Payment order operations

func (m *MemoryStore) CreatePaymentOrder(order *models.PaymentOrder) (*models.PaymentOrder, error) {
	m.orderMu.Lock()
	defer m.orderMu.Unlock()

	m.orderCounter++
	if order.OrderID == "" {
		order.OrderID = fmt.Sprintf("ORD%05d", m.orderCounter)
	}
	if order.Status == "" {
		order.Status = models.PaymentOrderCreated
	}
	if order.Currency == "" {
		order.Currency = "INR"
	}
	order.CreatedAt = time.Now()
	order.UpdatedAt = time.Now()

	m.orders[order.OrderID] = order
	return order, nil
}

func (m *MemoryStore) GetPaymentOrder(orderID string) (*models.PaymentOrder, error) {
	m.orderMu.RLock()
	defer m.orderMu.RUnlock()

	order, exists := m.orders[orderID]
	if !exists {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

func (m *MemoryStore) GetPaymentOrderByGatewayID(gatewayOrderID string) (*models.PaymentOrder, error) {
	m.orderMu.RLock()
	defer m.orderMu.RUnlock()

	for _, order := range m.orders {
		if order.GatewayOrderID == gatewayOrderID {
			return order, nil
		}
	}
	return nil, ErrOrderNotFound
}

func (m *MemoryStore) UpdatePaymentOrder(order *models.PaymentOrder) error {
	m.orderMu.Lock()
	defer m.orderMu.Unlock()

	if _, exists := m.orders[order.OrderID]; !exists {
		return ErrOrderNotFound
	}
	order.UpdatedAt = time.Now()
	m.orders[order.OrderID] = order
	return nil
}
