package gateway

import (
	"fmt"
	"sync"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protodesc"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/reflect/protoregistry"
	"google.golang.org/protobuf/types/descriptorpb"
	_ "google.golang.org/protobuf/types/known/structpb" // registers google/protobuf/struct.proto
)

const sessionProtoPath = "grill/v1/session.proto"

var (
	registerOnce sync.Once
	registerErr  error
)

// SessionServiceDescriptor registers the session service in the global
// protobuf registry so reflection clients (grpcurl, grpcui) can discover it.
// There is no .proto file; every method takes and returns google.protobuf.Struct.
func SessionServiceDescriptor() (protoreflect.ServiceDescriptor, error) {
	registerOnce.Do(func() {
		registerErr = registerSessionService()
	})
	if registerErr != nil {
		return nil, registerErr
	}

	desc, err := protoregistry.GlobalFiles.FindDescriptorByName(SessionServiceName)
	if err != nil {
		return nil, fmt.Errorf("find %s: %w", SessionServiceName, err)
	}
	svc, ok := desc.(protoreflect.ServiceDescriptor)
	if !ok {
		return nil, fmt.Errorf("%s is not a service", SessionServiceName)
	}
	return svc, nil
}

func registerSessionService() error {
	const structType = ".google.protobuf.Struct"

	names := []string{"Start", "TogglePause", "Flip", "Serve", "SetLanguage", "GetState"}
	methods := make([]*descriptorpb.MethodDescriptorProto, 0, len(names))
	for _, name := range names {
		methods = append(methods, &descriptorpb.MethodDescriptorProto{
			Name:       proto.String(name),
			InputType:  proto.String(structType),
			OutputType: proto.String(structType),
		})
	}

	file := &descriptorpb.FileDescriptorProto{
		Name:       proto.String(sessionProtoPath),
		Package:    proto.String("grill.v1"),
		Dependency: []string{"google/protobuf/struct.proto"},
		Syntax:     proto.String("proto3"),
		Service: []*descriptorpb.ServiceDescriptorProto{{
			Name:   proto.String("SessionService"),
			Method: methods,
		}},
	}

	fd, err := protodesc.NewFile(file, protoregistry.GlobalFiles)
	if err != nil {
		return fmt.Errorf("build %s descriptor: %w", sessionProtoPath, err)
	}
	if err := protoregistry.GlobalFiles.RegisterFile(fd); err != nil {
		return fmt.Errorf("register %s: %w", sessionProtoPath, err)
	}
	return nil
}
