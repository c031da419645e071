package unit

import (
	"context"
	"testing"

	"app/internal/domain/model"
	"app/internal/policy"
	repo "app/internal/repository"
	"app/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// =====================
// TxManager / TxRepos mocks
// =====================

// OrderTxManagerMock は WithinTx の中で渡す repos を固定して unit テストを回す
type OrderTxManagerMock struct {
	mock.Mock
	Repos repo.TxRepos
}

func (m *OrderTxManagerMock) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	// 呼ばれた事実だけ記録（ctxの具体値は問わない）
	m.Called(ctx)
	return fn(m.Repos)
}

type OrderTxReposMock struct {
	orders     repo.OrderRepository
	orderItems repo.OrderItemRepository
	carts      repo.CartRepository
	cartItems  repo.CartItemRepository
	menuItems  repo.MenuItemRepository
	users      repo.UserRepository
}

func (r *OrderTxReposMock) Orders() repo.OrderRepository         { return r.orders }
func (r *OrderTxReposMock) OrderItems() repo.OrderItemRepository { return r.orderItems }
func (r *OrderTxReposMock) Carts() repo.CartRepository           { return r.carts }
func (r *OrderTxReposMock) CartItems() repo.CartItemRepository   { return r.cartItems }
func (r *OrderTxReposMock) MenuItems() repo.MenuItemRepository   { return r.menuItems }
func (r *OrderTxReposMock) Users() repo.UserRepository           { return r.users }

// =====================
// Repository mocks (Order向け：衝突回避)
// =====================

type OrderRepoMock struct{ mock.Mock }

func (m *OrderRepoMock) FindByID(ctx context.Context, orderID int64) (model.Order, error) {
	args := m.Called(ctx, orderID)
	o, _ := args.Get(0).(model.Order)
	return o, args.Error(1)
}

func (m *OrderRepoMock) List(ctx context.Context, f repo.OrderListFilter) ([]model.Order, int64, error) {
	args := m.Called(ctx, f)
	orders, _ := args.Get(0).([]model.Order)
	return orders, args.Get(1).(int64), args.Error(2)
}

func (m *OrderRepoMock) Create(ctx context.Context, order model.Order) (int64, error) {
	args := m.Called(ctx, order)
	return args.Get(0).(int64), args.Error(1)
}

func (m *OrderRepoMock) UpdateStatus(ctx context.Context, orderID int64, status model.OrderStatus) error {
	args := m.Called(ctx, orderID, status)
	return args.Error(0)
}

func (m *OrderRepoMock) UpdateDeliveryCrew(ctx context.Context, orderID int64, crewID int64) error {
	args := m.Called(ctx, orderID, crewID)
	return args.Error(0)
}

func (m *OrderRepoMock) Delete(ctx context.Context, orderID int64) error {
	args := m.Called(ctx, orderID)
	return args.Error(0)
}

type OrderItemRepoMock struct{ mock.Mock }

func (m *OrderItemRepoMock) CreateBulk(ctx context.Context, orderID int64, items []model.OrderItem) error {
	args := m.Called(ctx, orderID, items)
	return args.Error(0)
}

func (m *OrderItemRepoMock) ListByOrderID(ctx context.Context, orderID int64) ([]model.OrderItem, error) {
	args := m.Called(ctx, orderID)
	items, _ := args.Get(0).([]model.OrderItem)
	return items, args.Error(1)
}

type OrderUserRepoMock struct{ mock.Mock }

func (m *OrderUserRepoMock) Create(ctx context.Context, user *model.User) error {
	panic("not used in OrderUsecase tests")
}

func (m *OrderUserRepoMock) FindByID(ctx context.Context, userID int64) (model.User, error) {
	args := m.Called(ctx, userID)
	u, _ := args.Get(0).(model.User)
	return u, args.Error(1)
}

func (m *OrderUserRepoMock) FindByUsername(ctx context.Context, username string) (model.User, error) {
	panic("not used in OrderUsecase tests")
}

func (m *OrderUserRepoMock) FindByEmail(ctx context.Context, email string) (model.User, error) {
	panic("not used in OrderUsecase tests")
}

func (m *OrderUserRepoMock) ListByRole(ctx context.Context, role model.Role) ([]model.User, error) {
	panic("not used in OrderUsecase tests")
}

func (m *OrderUserRepoMock) UpdateRole(ctx context.Context, userID int64, role model.Role) error {
	panic("not used in OrderUsecase tests")
}

type orderMocks struct {
	tx         *OrderTxManagerMock
	orders     *OrderRepoMock
	orderItems *OrderItemRepoMock
	carts      *CartRepoMock
	cartItems  *CartItemRepoMock
	menuItems  *CartMenuRepoMock
	users      *OrderUserRepoMock
}

func newOrderMocks() orderMocks {
	m := orderMocks{
		orders:     new(OrderRepoMock),
		orderItems: new(OrderItemRepoMock),
		carts:      new(CartRepoMock),
		cartItems:  new(CartItemRepoMock),
		menuItems:  new(CartMenuRepoMock),
		users:      new(OrderUserRepoMock),
	}

	m.tx = &OrderTxManagerMock{
		Repos: &OrderTxReposMock{
			orders:     m.orders,
			orderItems: m.orderItems,
			carts:      m.carts,
			cartItems:  m.cartItems,
			menuItems:  m.menuItems,
			users:      m.users,
		},
	}
	m.tx.On("WithinTx", mock.Anything).Return(nil)

	return m
}

var (
	orderCustomer = policy.Identity{UserID: 10, Role: model.RoleCustomer}
	orderManager  = policy.Identity{UserID: 1, Role: model.RoleManager}
	orderCrew     = policy.Identity{UserID: 9, Role: model.RoleDeliveryCrew}
)

// =====================
// PlaceOrder
// =====================

func TestOrderUsecase_PlaceOrder_ForbiddenForManager(t *testing.T) {
	m := newOrderMocks()
	uc := usecase.NewOrderUsecase(m.tx)

	_, err := uc.PlaceOrder(context.Background(), orderManager)
	assertErrContains(t, err, "only customers can create orders")
}

func TestOrderUsecase_PlaceOrder_NoCart(t *testing.T) {
	m := newOrderMocks()
	uc := usecase.NewOrderUsecase(m.tx)

	m.carts.On("FindByUserID", mock.Anything, int64(10)).Return(model.Cart{}, repo.ErrNotFound)

	_, err := uc.PlaceOrder(context.Background(), orderCustomer)
	assertErrContains(t, err, "cart is empty")
}

func TestOrderUsecase_PlaceOrder_EmptyCart(t *testing.T) {
	m := newOrderMocks()
	uc := usecase.NewOrderUsecase(m.tx)

	m.carts.On("FindByUserID", mock.Anything, int64(10)).Return(model.Cart{ID: 3, UserID: 10}, nil)
	m.cartItems.On("ListByCartID", mock.Anything, int64(3)).Return([]model.CartItem{}, nil)

	_, err := uc.PlaceOrder(context.Background(), orderCustomer)
	assertErrContains(t, err, "cannot create order from empty cart")

	m.orders.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestOrderUsecase_PlaceOrder_Success(t *testing.T) {
	ctx := context.Background()

	m := newOrderMocks()
	uc := usecase.NewOrderUsecase(m.tx)

	m.carts.On("FindByUserID", mock.Anything, int64(10)).Return(model.Cart{ID: 3, UserID: 10}, nil)
	m.cartItems.On("ListByCartID", mock.Anything, int64(3)).Return([]model.CartItem{
		{ID: 1, CartID: 3, MenuItemID: 5, Quantity: 2, UnitPrice: 8.50, Price: 17.00},
		{ID: 2, CartID: 3, MenuItemID: 6, Quantity: 1, UnitPrice: 4.25, Price: 4.25},
	}, nil)

	m.menuItems.On("FindByID", mock.Anything, int64(5)).Return(model.MenuItem{ID: 5, Title: "Pizza", Price: 8.50}, nil)
	m.menuItems.On("FindByID", mock.Anything, int64(6)).Return(model.MenuItem{ID: 6, Title: "Lemonade", Price: 4.25}, nil)

	m.orders.On("Create", mock.Anything, mock.MatchedBy(func(o model.Order) bool {
		return o.UserID == 10 && o.Status == model.OrderStatusPending && o.Total == 21.25
	})).Return(int64(100), nil)

	m.orderItems.On("CreateBulk", mock.Anything, int64(100), mock.MatchedBy(func(items []model.OrderItem) bool {
		return len(items) == 2 && items[0].Title == "Pizza" && items[1].Title == "Lemonade"
	})).Return(nil)

	// 注文確定でカートが空になる
	m.carts.On("Clear", mock.Anything, int64(3)).Return(nil)

	out, err := uc.PlaceOrder(ctx, orderCustomer)
	assert.NoError(t, err)
	assert.Equal(t, int64(100), out.ID)
	assert.Equal(t, "PENDING", out.Status)
	assert.Equal(t, 21.25, out.Total)
	assert.Equal(t, 2, len(out.Items))

	m.orders.AssertExpectations(t)
	m.orderItems.AssertExpectations(t)
	m.carts.AssertExpectations(t)
}

// =====================
// List / Get
// =====================

func TestOrderUsecase_ListOrders_InvalidStatus(t *testing.T) {
	m := newOrderMocks()
	uc := usecase.NewOrderUsecase(m.tx)

	_, err := uc.ListOrders(context.Background(), orderCustomer, usecase.ListOrdersInput{Page: 1, PerPage: 5, Status: "SHIPPED"})
	assertErrContains(t, err, "invalid status value")
}

func TestOrderUsecase_ListOrders_InvalidOrdering(t *testing.T) {
	m := newOrderMocks()
	uc := usecase.NewOrderUsecase(m.tx)

	_, err := uc.ListOrders(context.Background(), orderCustomer, usecase.ListOrdersInput{Page: 1, PerPage: 5, Ordering: "price"})
	assertErrContains(t, err, "invalid ordering field")
}

func TestOrderUsecase_ListOrders_CustomerScopedToOwnOrders(t *testing.T) {
	ctx := context.Background()

	m := newOrderMocks()
	uc := usecase.NewOrderUsecase(m.tx)

	m.orders.On("List", mock.Anything, mock.MatchedBy(func(f repo.OrderListFilter) bool {
		return f.UserID != nil && *f.UserID == 10 && f.DeliveryCrewID == nil
	})).Return([]model.Order{{ID: 100, UserID: 10, Status: model.OrderStatusPending, Total: 21.25}}, int64(1), nil)

	m.orderItems.On("ListByOrderID", mock.Anything, int64(100)).Return([]model.OrderItem{}, nil)

	out, err := uc.ListOrders(ctx, orderCustomer, usecase.ListOrdersInput{Page: 1, PerPage: 5})
	assert.NoError(t, err)
	assert.Equal(t, int64(1), out.Total)
	assert.Equal(t, 1, len(out.Items))

	m.orders.AssertExpectations(t)
}

func TestOrderUsecase_ListOrders_CrewScopedToAssigned(t *testing.T) {
	ctx := context.Background()

	m := newOrderMocks()
	uc := usecase.NewOrderUsecase(m.tx)

	m.orders.On("List", mock.Anything, mock.MatchedBy(func(f repo.OrderListFilter) bool {
		return f.DeliveryCrewID != nil && *f.DeliveryCrewID == 9 && f.UserID == nil
	})).Return([]model.Order{}, int64(0), nil)

	out, err := uc.ListOrders(ctx, orderCrew, usecase.ListOrdersInput{Page: 1, PerPage: 5})
	assert.NoError(t, err)
	assert.Equal(t, int64(0), out.Total)
}

func TestOrderUsecase_GetOrder_OtherCustomersOrder_IsNotFound(t *testing.T) {
	m := newOrderMocks()
	uc := usecase.NewOrderUsecase(m.tx)

	m.orders.On("FindByID", mock.Anything, int64(100)).Return(model.Order{ID: 100, UserID: 77}, nil)

	_, err := uc.GetOrder(context.Background(), orderCustomer, 100)
	assertErrContains(t, err, "not found")
}

// =====================
// UpdateOrder
// =====================

func TestOrderUsecase_UpdateOrder_ForbiddenForCustomer(t *testing.T) {
	m := newOrderMocks()
	uc := usecase.NewOrderUsecase(m.tx)

	st := "DELIVERED"
	_, err := uc.UpdateOrder(context.Background(), orderCustomer, 100, usecase.UpdateOrderInput{Status: &st})
	assertErrContains(t, err, "customers cannot update orders")
}

func TestOrderUsecase_UpdateOrder_CrewNotAssigned(t *testing.T) {
	m := newOrderMocks()
	uc := usecase.NewOrderUsecase(m.tx)

	other := int64(8)
	m.orders.On("FindByID", mock.Anything, int64(100)).Return(model.Order{ID: 100, UserID: 10, DeliveryCrewID: &other}, nil)

	st := "DELIVERED"
	_, err := uc.UpdateOrder(context.Background(), orderCrew, 100, usecase.UpdateOrderInput{Status: &st})
	assertErrContains(t, err, "assigned to you")
}

func TestOrderUsecase_UpdateOrder_CrewCannotReassign(t *testing.T) {
	m := newOrderMocks()
	uc := usecase.NewOrderUsecase(m.tx)

	crewID := int64(9)
	m.orders.On("FindByID", mock.Anything, int64(100)).Return(model.Order{ID: 100, UserID: 10, DeliveryCrewID: &crewID}, nil)

	target := int64(12)
	_, err := uc.UpdateOrder(context.Background(), orderCrew, 100, usecase.UpdateOrderInput{DeliveryCrewID: &target})
	assertErrContains(t, err, "cannot change assignment")
}

func TestOrderUsecase_UpdateOrder_CrewMarksDelivered(t *testing.T) {
	ctx := context.Background()

	m := newOrderMocks()
	uc := usecase.NewOrderUsecase(m.tx)

	crewID := int64(9)
	m.orders.On("FindByID", mock.Anything, int64(100)).Return(model.Order{
		ID: 100, UserID: 10, DeliveryCrewID: &crewID, Status: model.OrderStatusPending,
	}, nil)
	m.orders.On("UpdateStatus", mock.Anything, int64(100), model.OrderStatusDelivered).Return(nil)
	m.orderItems.On("ListByOrderID", mock.Anything, int64(100)).Return([]model.OrderItem{}, nil)

	st := "DELIVERED"
	out, err := uc.UpdateOrder(ctx, orderCrew, 100, usecase.UpdateOrderInput{Status: &st})
	assert.NoError(t, err)
	assert.Equal(t, "DELIVERED", out.Status)

	m.orders.AssertExpectations(t)
}

func TestOrderUsecase_UpdateOrder_StatusCannotGoBack(t *testing.T) {
	m := newOrderMocks()
	uc := usecase.NewOrderUsecase(m.tx)

	m.orders.On("FindByID", mock.Anything, int64(100)).Return(model.Order{
		ID: 100, UserID: 10, Status: model.OrderStatusDelivered,
	}, nil)

	st := "PENDING"
	_, err := uc.UpdateOrder(context.Background(), orderManager, 100, usecase.UpdateOrderInput{Status: &st})
	assertErrContains(t, err, "invalid status transition")

	m.orders.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
}

func TestOrderUsecase_UpdateOrder_SameStatus_IsNoop(t *testing.T) {
	ctx := context.Background()

	m := newOrderMocks()
	uc := usecase.NewOrderUsecase(m.tx)

	m.orders.On("FindByID", mock.Anything, int64(100)).Return(model.Order{
		ID: 100, UserID: 10, Status: model.OrderStatusPending,
	}, nil)
	m.orderItems.On("ListByOrderID", mock.Anything, int64(100)).Return([]model.OrderItem{}, nil)

	st := "PENDING"
	out, err := uc.UpdateOrder(ctx, orderManager, 100, usecase.UpdateOrderInput{Status: &st})
	assert.NoError(t, err)
	assert.Equal(t, "PENDING", out.Status)

	m.orders.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
}

func TestOrderUsecase_UpdateOrder_AssignUnknownUser(t *testing.T) {
	m := newOrderMocks()
	uc := usecase.NewOrderUsecase(m.tx)

	m.orders.On("FindByID", mock.Anything, int64(100)).Return(model.Order{ID: 100, UserID: 10, Status: model.OrderStatusPending}, nil)
	m.users.On("FindByID", mock.Anything, int64(99)).Return(model.User{}, repo.ErrNotFound)

	target := int64(99)
	_, err := uc.UpdateOrder(context.Background(), orderManager, 100, usecase.UpdateOrderInput{DeliveryCrewID: &target})
	assertErrContains(t, err, "user not found")
}

func TestOrderUsecase_UpdateOrder_AssignNonCrewUser(t *testing.T) {
	m := newOrderMocks()
	uc := usecase.NewOrderUsecase(m.tx)

	m.orders.On("FindByID", mock.Anything, int64(100)).Return(model.Order{ID: 100, UserID: 10, Status: model.OrderStatusPending}, nil)
	m.users.On("FindByID", mock.Anything, int64(10)).Return(model.User{ID: 10, Role: model.RoleCustomer}, nil)

	target := int64(10)
	_, err := uc.UpdateOrder(context.Background(), orderManager, 100, usecase.UpdateOrderInput{DeliveryCrewID: &target})
	assertErrContains(t, err, "not in delivery crew")
}

func TestOrderUsecase_UpdateOrder_ManagerAssignsCrew(t *testing.T) {
	ctx := context.Background()

	m := newOrderMocks()
	uc := usecase.NewOrderUsecase(m.tx)

	m.orders.On("FindByID", mock.Anything, int64(100)).Return(model.Order{ID: 100, UserID: 10, Status: model.OrderStatusPending}, nil)
	m.users.On("FindByID", mock.Anything, int64(9)).Return(model.User{ID: 9, Role: model.RoleDeliveryCrew}, nil)
	m.orders.On("UpdateDeliveryCrew", mock.Anything, int64(100), int64(9)).Return(nil)
	m.orderItems.On("ListByOrderID", mock.Anything, int64(100)).Return([]model.OrderItem{}, nil)

	target := int64(9)
	out, err := uc.UpdateOrder(ctx, orderManager, 100, usecase.UpdateOrderInput{DeliveryCrewID: &target})
	assert.NoError(t, err)
	if assert.NotNil(t, out.DeliveryCrewID) {
		assert.Equal(t, int64(9), *out.DeliveryCrewID)
	}

	m.orders.AssertExpectations(t)
}

// =====================
// DeleteOrder
// =====================

func TestOrderUsecase_DeleteOrder_ForbiddenForCustomer(t *testing.T) {
	m := newOrderMocks()
	uc := usecase.NewOrderUsecase(m.tx)

	err := uc.DeleteOrder(context.Background(), orderCustomer, 100)
	assertErrContains(t, err, "only managers can delete orders")
}

func TestOrderUsecase_DeleteOrder_Success(t *testing.T) {
	m := newOrderMocks()
	uc := usecase.NewOrderUsecase(m.tx)

	m.orders.On("Delete", mock.Anything, int64(100)).Return(nil)

	err := uc.DeleteOrder(context.Background(), orderManager, 100)
	assert.NoError(t, err)

	m.orders.AssertExpectations(t)
}
