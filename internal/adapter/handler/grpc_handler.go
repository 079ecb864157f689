package handler

import (
	"context"
	"errors"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/rl1809/store-manager/internal/core/domain"
	"github.com/rl1809/store-manager/internal/core/service"
)

// StoreServiceName is the fully qualified gRPC service name. Requests and
// responses are google.protobuf.Struct messages using the HTTP field names.
const StoreServiceName = "storemanager.v1.StoreService"

type StoreServiceServer interface {
	GetInventory(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetBalance(context.Context, *structpb.Struct) (*structpb.Struct, error)
	AdjustBalance(context.Context, *structpb.Struct) (*structpb.Struct, error)
	RecordSale(context.Context, *structpb.Struct) (*structpb.Struct, error)
	RecordPurchase(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetHistory(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

type GRPCHandler struct {
	store *service.StoreService
}

func NewGRPCHandler(store *service.StoreService) *GRPCHandler {
	return &GRPCHandler{store: store}
}

func RegisterStoreServiceServer(s grpc.ServiceRegistrar, srv StoreServiceServer) {
	s.RegisterService(&storeServiceDesc, srv)
}

func (h *GRPCHandler) GetInventory(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	items := h.store.Inventory()
	inventory := make(map[string]any, len(items))
	for name, item := range items {
		inventory[name] = map[string]any{
			"price":    item.Price.String(),
			"quantity": item.Quantity,
		}
	}
	return newStruct(map[string]any{"inventory": inventory})
}

func (h *GRPCHandler) GetBalance(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	return newStruct(map[string]any{"balance": h.store.Balance().String()})
}

func (h *GRPCHandler) AdjustBalance(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	command, err := stringField(req, "command")
	if err != nil {
		return nil, mapStoreError(err)
	}
	amount, err := intField(req, "amount")
	if err != nil {
		return nil, mapStoreError(err)
	}

	balance, err := h.store.AdjustBalance(ctx, command, amount)
	if err != nil {
		return nil, mapStoreError(err)
	}
	return newStruct(map[string]any{"balance": balance.String()})
}

func (h *GRPCHandler) RecordSale(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	name, price, quantity, err := lineFields(req)
	if err != nil {
		return nil, mapStoreError(err)
	}

	tx, err := h.store.RecordSale(ctx, name, price, quantity)
	if err != nil {
		return nil, mapStoreError(err)
	}
	return newStruct(map[string]any{
		"transaction": transactionValue(tx),
		"balance":     h.store.Balance().String(),
	})
}

func (h *GRPCHandler) RecordPurchase(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	name, price, quantity, err := lineFields(req)
	if err != nil {
		return nil, mapStoreError(err)
	}

	tx, err := h.store.RecordPurchase(ctx, name, price, quantity)
	if err != nil {
		return nil, mapStoreError(err)
	}
	return newStruct(map[string]any{
		"transaction": transactionValue(tx),
		"balance":     h.store.Balance().String(),
	})
}

func (h *GRPCHandler) GetHistory(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	sales, purchases := h.store.History()
	return newStruct(map[string]any{
		"sales_history":    transactionValues(sales),
		"purchase_history": transactionValues(purchases),
	})
}

// mapStoreError converts a store error to a gRPC status error.
func mapStoreError(err error) error {
	code := codes.Internal
	switch {
	case errors.Is(err, domain.ErrValidation):
		code = codes.InvalidArgument
	case errors.Is(err, domain.ErrItemNotAvailable), errors.Is(err, domain.ErrNotFound):
		code = codes.NotFound
	case errors.Is(err, domain.ErrInsufficientStock), errors.Is(err, domain.ErrInsufficientFunds):
		code = codes.FailedPrecondition
	}
	return status.Error(code, domain.Message(err))
}

func lineFields(req *structpb.Struct) (string, decimal.Decimal, int, error) {
	name, err := stringField(req, "item_name")
	if err != nil {
		return "", decimal.Zero, 0, err
	}
	price, err := decimalField(req, "price")
	if err != nil {
		return "", decimal.Zero, 0, err
	}
	quantity, err := intField(req, "quantity")
	if err != nil {
		return "", decimal.Zero, 0, err
	}
	if quantity > math.MaxInt32 {
		return "", decimal.Zero, 0, domain.Validationf("quantity is too large")
	}
	return name, price, int(quantity), nil
}

func field(req *structpb.Struct, key string) (*structpb.Value, error) {
	v, ok := req.GetFields()[key]
	if !ok {
		return nil, domain.Validationf("%s is required", key)
	}
	if _, isNull := v.GetKind().(*structpb.Value_NullValue); isNull {
		return nil, domain.Validationf("%s is required", key)
	}
	return v, nil
}

func stringField(req *structpb.Struct, key string) (string, error) {
	v, err := field(req, key)
	if err != nil {
		return "", err
	}
	s, ok := v.GetKind().(*structpb.Value_StringValue)
	if !ok || strings.TrimSpace(s.StringValue) == "" {
		return "", domain.Validationf("%s must be a non-empty string", key)
	}
	return strings.TrimSpace(s.StringValue), nil
}

// decimalField accepts a number or a decimal string.
func decimalField(req *structpb.Struct, key string) (decimal.Decimal, error) {
	v, err := field(req, key)
	if err != nil {
		return decimal.Zero, err
	}
	switch k := v.GetKind().(type) {
	case *structpb.Value_NumberValue:
		return decimal.NewFromFloat(k.NumberValue), nil
	case *structpb.Value_StringValue:
		d, err := decimal.NewFromString(strings.TrimSpace(k.StringValue))
		if err != nil {
			return decimal.Zero, domain.Validationf("%s must be a number", key)
		}
		return d, nil
	}
	return decimal.Zero, domain.Validationf("%s must be a number", key)
}

// intField accepts a whole number or a string holding one.
func intField(req *structpb.Struct, key string) (int64, error) {
	v, err := field(req, key)
	if err != nil {
		return 0, err
	}
	switch k := v.GetKind().(type) {
	case *structpb.Value_NumberValue:
		n := k.NumberValue
		if n != math.Trunc(n) || math.Abs(n) > 1<<53 {
			return 0, domain.Validationf("%s must be a whole number", key)
		}
		return int64(n), nil
	case *structpb.Value_StringValue:
		n, err := strconv.ParseInt(strings.TrimSpace(k.StringValue), 10, 64)
		if err != nil {
			return 0, domain.Validationf("%s must be a whole number", key)
		}
		return n, nil
	}
	return 0, domain.Validationf("%s must be a whole number", key)
}

func transactionValue(tx domain.Transaction) map[string]any {
	return map[string]any{
		"item":     tx.Item,
		"price":    tx.Price.String(),
		"quantity": tx.Quantity,
		"total":    tx.Total.String(),
		"time":     tx.Time,
	}
}

func transactionValues(txs []domain.Transaction) []any {
	out := make([]any, 0, len(txs))
	for _, tx := range txs {
		out = append(out, transactionValue(tx))
	}
	return out
}

func newStruct(m map[string]any) (*structpb.Struct, error) {
	s, err := structpb.NewStruct(m)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode response: %v", err)
	}
	return s, nil
}

type unaryMethod func(StoreServiceServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unaryHandler(name string, method unaryMethod) func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	fullMethod := "/" + StoreServiceName + "/" + name
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return method(srv.(StoreServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return method(srv.(StoreServiceServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

var storeServiceDesc = grpc.ServiceDesc{
	ServiceName: StoreServiceName,
	HandlerType: (*StoreServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "GetInventory", Handler: unaryHandler("GetInventory", StoreServiceServer.GetInventory)},
		{MethodName: "GetBalance", Handler: unaryHandler("GetBalance", StoreServiceServer.GetBalance)},
		{MethodName: "AdjustBalance", Handler: unaryHandler("AdjustBalance", StoreServiceServer.AdjustBalance)},
		{MethodName: "RecordSale", Handler: unaryHandler("RecordSale", StoreServiceServer.RecordSale)},
		{MethodName: "RecordPurchase", Handler: unaryHandler("RecordPurchase", StoreServiceServer.RecordPurchase)},
		{MethodName: "GetHistory", Handler: unaryHandler("GetHistory", StoreServiceServer.GetHistory)},
	},
	Streams: []grpc.StreamDesc{},
}
