package api

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/url"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"item-catalog-service/internal/domain"
	"item-catalog-service/internal/logger"
	"item-catalog-service/internal/query"
	"item-catalog-service/internal/store"
)

// GRPCHandler implements ItemCatalogServer on top of an ItemStorer.
//
// Request layouts:
//
//	ListItems         {"skip": n, "limit": n}
//	GetItem           {"id": n}
//	SearchItems       {"q": "..."}
//	ListByCategories  {"categories": ["Toys", ...]}
//	FilterItems       {"category", "brand", "min_price", "max_price", "in_stock"}
//	CreateItem        {"category": "...", "item": {...}}
//	UpdateItem        {"id": n, "item": {...}}
//
// List methods answer {"items": [...]}, GetItem answers {"item": {...}} and
// mutations answer {"message": "...", "item": {...}}.
type GRPCHandler struct {
	itemStore store.ItemStorer
	validate  *validator.Validate
	logger    *logger.Logger
}

// NewGRPCHandler creates a new GRPCHandler.
func NewGRPCHandler(s store.ItemStorer, l *logger.Logger) *GRPCHandler {
	if l == nil {
		l = logger.Nop()
	}
	return &GRPCHandler{itemStore: s, validate: validator.New(), logger: l}
}

// --- Helper: Error Mapping ---
func (g *GRPCHandler) mapStoreErrorToGrpcStatus(err error, method string) error {
	switch {
	case errors.Is(err, store.ErrDatasetNotFound):
		g.logger.Warnw("dataset missing", "method", method, "error", err)
		return status.Error(codes.NotFound, msgDatasetNotFound)
	case errors.Is(err, store.ErrItemNotFound):
		return status.Error(codes.NotFound, msgItemNotFound)
	case errors.Is(err, store.ErrInvalidCategory):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return status.FromContextError(err).Err()
	default:
		g.logger.Errorw("store operation failed", "method", method, "error", err)
		return status.Errorf(codes.Internal, "%s failed", method)
	}
}

func invalidArgument(format string, args ...interface{}) error {
	return status.Errorf(codes.InvalidArgument, format, args...)
}

// --- ItemCatalogServer Implementation ---

func (g *GRPCHandler) ListItems(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	skip, err := intField(req, "skip", 0)
	if err != nil {
		return nil, err
	}
	limit, err := intField(req, "limit", defaultLimit)
	if err != nil {
		return nil, err
	}
	items, err := g.itemStore.ListItems(ctx)
	if err != nil {
		return nil, g.mapStoreErrorToGrpcStatus(err, "ListItems")
	}
	return itemsStruct(query.Paginate(items, int(skip), int(limit)))
}

func (g *GRPCHandler) GetItem(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	id, err := itemIDField(req)
	if err != nil {
		return nil, err
	}
	item, err := g.itemStore.GetItem(ctx, id)
	if err != nil {
		return nil, g.mapStoreErrorToGrpcStatus(err, "GetItem")
	}
	return structpb.NewStruct(map[string]interface{}{"item": itemToMap(*item)})
}

func (g *GRPCHandler) SearchItems(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	q := req.GetFields()["q"].GetStringValue()
	if err := validateSearchQuery(g.validate, q); err != nil {
		return nil, invalidArgument("%v", err)
	}
	items, err := g.itemStore.ListItems(ctx)
	if err != nil {
		return nil, g.mapStoreErrorToGrpcStatus(err, "SearchItems")
	}
	return itemsStruct(query.Search(items, q))
}

func (g *GRPCHandler) ListByCategories(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var allowed []string
	for _, v := range req.GetFields()["categories"].GetListValue().GetValues() {
		allowed = append(allowed, v.GetStringValue())
	}
	items, err := g.itemStore.ListItems(ctx)
	if err != nil {
		return nil, g.mapStoreErrorToGrpcStatus(err, "ListByCategories")
	}
	views := query.ByCategorySet(items, allowed)
	list := make([]interface{}, len(views))
	for i, v := range views {
		list[i] = map[string]interface{}{"name": v.Name, "category": v.Category}
	}
	return structpb.NewStruct(map[string]interface{}{"items": list})
}

func (g *GRPCHandler) FilterItems(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	values := url.Values{}
	for k, v := range req.GetFields() {
		switch kind := v.GetKind().(type) {
		case *structpb.Value_StringValue:
			values.Set(k, kind.StringValue)
		case *structpb.Value_NumberValue:
			values.Set(k, strconv.FormatFloat(kind.NumberValue, 'f', -1, 64))
		case *structpb.Value_BoolValue:
			values.Set(k, strconv.FormatBool(kind.BoolValue))
		case *structpb.Value_NullValue:
			// null imposes no constraint
		default:
			return nil, invalidArgument("unsupported value for %q", k)
		}
	}
	params, err := parseFilterParams(values)
	if err != nil {
		return nil, invalidArgument("%v", err)
	}
	items, err := g.itemStore.ListItems(ctx)
	if err != nil {
		return nil, g.mapStoreErrorToGrpcStatus(err, "FilterItems")
	}
	return itemsStruct(query.Filter(items, params))
}

func (g *GRPCHandler) CreateItem(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	category, err := domain.ParseCategory(req.GetFields()["category"].GetStringValue())
	if err != nil {
		return nil, invalidArgument("%v", err)
	}
	var input ItemInput
	if err := g.decodeItem(req, &input); err != nil {
		return nil, err
	}
	created, err := g.itemStore.CreateItem(ctx, input.Fields(), string(category))
	if err != nil {
		return nil, g.mapStoreErrorToGrpcStatus(err, "CreateItem")
	}
	return structpb.NewStruct(map[string]interface{}{"message": msgItemCreated, "item": itemToMap(*created)})
}

func (g *GRPCHandler) UpdateItem(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	id, err := itemIDField(req)
	if err != nil {
		return nil, err
	}
	var input ItemUpdateInput
	if err := g.decodeItem(req, &input); err != nil {
		return nil, err
	}
	updated, err := g.itemStore.UpdateItem(ctx, id, input.Fields())
	if err != nil {
		return nil, g.mapStoreErrorToGrpcStatus(err, "UpdateItem")
	}
	return structpb.NewStruct(map[string]interface{}{"message": msgItemUpdated, "item": itemToMap(*updated)})
}

// decodeItem unmarshals req.item into dst and validates it.
func (g *GRPCHandler) decodeItem(req *structpb.Struct, dst interface{}) error {
	body := req.GetFields()["item"].GetStructValue()
	if body == nil {
		return invalidArgument("item is required")
	}
	raw, err := body.MarshalJSON()
	if err != nil {
		return invalidArgument("invalid item: %v", err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return invalidArgument("invalid item: %v", err)
	}
	if err := g.validate.Struct(dst); err != nil {
		return invalidArgument("Validation failed: %v", err)
	}
	return nil
}

// UnaryLoggingInterceptor logs every unary call with its outcome.
func UnaryLoggingInterceptor(l *logger.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		l.Infow("grpc request",
			"method", info.FullMethod,
			"code", status.Code(err).String(),
			"duration", time.Since(start),
		)
		return resp, err
	}
}

// --- Conversion helpers ---

func intField(req *structpb.Struct, key string, def int64) (int64, error) {
	v, ok := req.GetFields()[key]
	if !ok {
		return def, nil
	}
	n, isNum := v.GetKind().(*structpb.Value_NumberValue)
	if !isNum || n.NumberValue != math.Trunc(n.NumberValue) {
		return 0, invalidArgument("%s must be an integer", key)
	}
	return int64(n.NumberValue), nil
}

func itemIDField(req *structpb.Struct) (int64, error) {
	if _, ok := req.GetFields()["id"]; !ok {
		return 0, invalidArgument("id is required")
	}
	id, err := intField(req, "id", 0)
	if err != nil {
		return 0, err
	}
	if id < 1 {
		return 0, invalidArgument("id must be >= 1, got %d", id)
	}
	return id, nil
}

func itemToMap(it domain.Item) map[string]interface{} {
	return map[string]interface{}{
		"id":          it.ID,
		"name":        it.Name,
		"description": it.Description,
		"brand":       it.Brand,
		"price":       it.Price,
		"rating":      it.Rating,
		"in_stock":    it.InStock,
		"category":    it.Category,
	}
}

func itemsStruct(items []domain.Item) (*structpb.Struct, error) {
	list := make([]interface{}, len(items))
	for i, it := range items {
		list[i] = itemToMap(it)
	}
	s, err := structpb.NewStruct(map[string]interface{}{"items": list})
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode items: %v", err)
	}
	return s, nil
}
