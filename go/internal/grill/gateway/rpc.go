package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"connectrpc.com/connect"
	"github.com/mcdev12/gimgrill/go/internal/grill"
	"google.golang.org/protobuf/types/known/structpb"
)

// SessionServiceName is the fully-qualified name of the session RPC service
const SessionServiceName = "grill.v1.SessionService"

const (
	StartProcedure       = "/grill.v1.SessionService/Start"
	TogglePauseProcedure = "/grill.v1.SessionService/TogglePause"
	FlipProcedure        = "/grill.v1.SessionService/Flip"
	ServeProcedure       = "/grill.v1.SessionService/Serve"
	SetLanguageProcedure = "/grill.v1.SessionService/SetLanguage"
	GetStateProcedure    = "/grill.v1.SessionService/GetState"
)

// RPCHandler exposes the player intents as Connect unary procedures.
// Messages are google.protobuf.Struct so clients can speak JSON or binary protobuf.
type RPCHandler struct {
	intents Intents
}

func NewRPCHandler(intents Intents) *RPCHandler {
	return &RPCHandler{intents: intents}
}

// NewSessionServiceHandler builds an HTTP handler serving every procedure of
// the session service. It returns the path prefix to mount it on.
func NewSessionServiceHandler(intents Intents, opts ...connect.HandlerOption) (string, http.Handler) {
	h := NewRPCHandler(intents)

	mux := http.NewServeMux()
	mux.Handle(StartProcedure, connect.NewUnaryHandler(StartProcedure, h.Start, opts...))
	mux.Handle(TogglePauseProcedure, connect.NewUnaryHandler(TogglePauseProcedure, h.TogglePause, opts...))
	mux.Handle(FlipProcedure, connect.NewUnaryHandler(FlipProcedure, h.Flip, opts...))
	mux.Handle(ServeProcedure, connect.NewUnaryHandler(ServeProcedure, h.Serve, opts...))
	mux.Handle(SetLanguageProcedure, connect.NewUnaryHandler(SetLanguageProcedure, h.SetLanguage, opts...))
	mux.Handle(GetStateProcedure, connect.NewUnaryHandler(GetStateProcedure, h.GetState, opts...))

	return "/" + SessionServiceName + "/", mux
}

func (h *RPCHandler) Start(ctx context.Context, req *connect.Request[structpb.Struct]) (*connect.Response[structpb.Struct], error) {
	return snapshotResponse(h.intents.Start(ctx))
}

func (h *RPCHandler) TogglePause(ctx context.Context, req *connect.Request[structpb.Struct]) (*connect.Response[structpb.Struct], error) {
	return snapshotResponse(h.intents.TogglePause(ctx))
}

func (h *RPCHandler) Flip(ctx context.Context, req *connect.Request[structpb.Struct]) (*connect.Response[structpb.Struct], error) {
	seaweedID, err := requiredString(req.Msg, "seaweed_id")
	if err != nil {
		return nil, err
	}
	return snapshotResponse(h.intents.Flip(ctx, seaweedID))
}

func (h *RPCHandler) Serve(ctx context.Context, req *connect.Request[structpb.Struct]) (*connect.Response[structpb.Struct], error) {
	customerID, err := requiredString(req.Msg, "customer_id")
	if err != nil {
		return nil, err
	}
	seaweedID, err := requiredString(req.Msg, "seaweed_id")
	if err != nil {
		return nil, err
	}

	outcome, snap := h.intents.Serve(ctx, customerID, seaweedID)
	msg, err := toStruct(struct {
		Outcome  grill.ServeOutcome `json:"outcome"`
		Snapshot grill.Snapshot     `json:"snapshot"`
	}{outcome, snap})
	if err != nil {
		return nil, connect.NewError(connect.CodeInternal, err)
	}
	return connect.NewResponse(msg), nil
}

func (h *RPCHandler) SetLanguage(ctx context.Context, req *connect.Request[structpb.Struct]) (*connect.Response[structpb.Struct], error) {
	lang, err := requiredString(req.Msg, "language")
	if err != nil {
		return nil, err
	}
	if !grill.Language(lang).IsValid() {
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("unsupported language %q", lang))
	}
	return snapshotResponse(h.intents.SetLanguage(ctx, grill.Language(lang)))
}

func (h *RPCHandler) GetState(ctx context.Context, req *connect.Request[structpb.Struct]) (*connect.Response[structpb.Struct], error) {
	return snapshotResponse(h.intents.Snapshot())
}

func snapshotResponse(snap grill.Snapshot) (*connect.Response[structpb.Struct], error) {
	msg, err := toStruct(struct {
		Snapshot    grill.Snapshot `json:"snapshot"`
		ShowSummary bool           `json:"show_summary"`
	}{snap, snap.ShowSummary()})
	if err != nil {
		return nil, connect.NewError(connect.CodeInternal, err)
	}
	return connect.NewResponse(msg), nil
}

func requiredString(msg *structpb.Struct, field string) (string, error) {
	v := msg.GetFields()[field].GetStringValue()
	if v == "" {
		return "", connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("%w: %s", ErrMissingField, field))
	}
	return v, nil
}

// toStruct converts any JSON-encodable value into a protobuf Struct
func toStruct(v any) (*structpb.Struct, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal response: %w", err)
	}
	var m map[string]interface{}
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}
	s, err := structpb.NewStruct(m)
	if err != nil {
		return nil, fmt.Errorf("build struct: %w", err)
	}
	return s, nil
}
