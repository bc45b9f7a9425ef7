package bridge

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jhump/protoreflect/desc"
	"github.com/jhump/protoreflect/desc/protoparse"
	"github.com/jhump/protoreflect/dynamic"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/vexlang/vex/internal/evaluator"
)

// GRPCSpecialist is the alternative specialist transport for deployments
// that run the library host as a service instead of a child process. The
// service schema is loaded from a proto file at construction; requests go
// through a single unary method carrying module, function and JSON args.
type GRPCSpecialist struct {
	conn    *grpc.ClientConn
	method  *desc.MethodDescriptor
	timeout time.Duration
}

// NewGRPCSpecialist dials target and resolves methodPath, written as
// "package.Service/Method", against the given proto file.
func NewGRPCSpecialist(target, protoPath, methodPath string, timeout time.Duration) (*GRPCSpecialist, error) {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	parser := protoparse.Parser{ImportPaths: []string{"."}}
	fds, err := parser.ParseFiles(protoPath)
	if err != nil {
		return nil, fmt.Errorf("bridge: parse proto: %w", err)
	}

	method, err := findMethod(fds, methodPath)
	if err != nil {
		return nil, err
	}

	conn, err := grpc.NewClient(target, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("bridge: dial specialist: %w", err)
	}

	return &GRPCSpecialist{conn: conn, method: method, timeout: timeout}, nil
}

func findMethod(fds []*desc.FileDescriptor, methodPath string) (*desc.MethodDescriptor, error) {
	slash := strings.LastIndex(methodPath, "/")
	if slash < 0 {
		return nil, fmt.Errorf("bridge: method path must be Service/Method, got %q", methodPath)
	}
	serviceName, methodName := methodPath[:slash], methodPath[slash+1:]

	for _, fd := range fds {
		service := fd.FindService(serviceName)
		if service == nil {
			continue
		}
		method := service.FindMethodByName(methodName)
		if method == nil {
			return nil, fmt.Errorf("bridge: service %s has no method %s", serviceName, methodName)
		}
		if method.IsClientStreaming() || method.IsServerStreaming() {
			return nil, fmt.Errorf("bridge: method %s must be unary", methodPath)
		}
		return method, nil
	}
	return nil, fmt.Errorf("bridge: service %s not found in proto", serviceName)
}

func (s *GRPCSpecialist) Call(module, function string, args []evaluator.Object) (evaluator.Object, error) {
	encoded := make([]interface{}, len(args))
	for i, arg := range args {
		enc, err := encodeValue(arg)
		if err != nil {
			return nil, err
		}
		encoded[i] = enc
	}
	argsJSON, err := json.Marshal(encoded)
	if err != nil {
		return nil, err
	}

	req := dynamic.NewMessage(s.method.GetInputType())
	if err := req.TrySetFieldByName("module", module); err != nil {
		return nil, fmt.Errorf("bridge: request schema: %w", err)
	}
	if err := req.TrySetFieldByName("function", function); err != nil {
		return nil, fmt.Errorf("bridge: request schema: %w", err)
	}
	if err := req.TrySetFieldByName("args", string(argsJSON)); err != nil {
		return nil, fmt.Errorf("bridge: request schema: %w", err)
	}

	resp := dynamic.NewMessage(s.method.GetOutputType())

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	methodPath := "/" + s.method.GetService().GetFullyQualifiedName() + "/" + s.method.GetName()
	if err := s.conn.Invoke(ctx, methodPath, req, resp); err != nil {
		return nil, fmt.Errorf("bridge: rpc failed: %w", err)
	}

	if errField, err := resp.TryGetFieldByName("error"); err == nil {
		if msg, ok := errField.(string); ok && msg != "" {
			return nil, errors.New(msg)
		}
	}

	okField, err := resp.TryGetFieldByName("ok")
	if err != nil {
		return nil, fmt.Errorf("bridge: response schema: %w", err)
	}
	payload, ok := okField.(string)
	if !ok || payload == "" {
		return evaluator.VOID, nil
	}

	dec := json.NewDecoder(bytes.NewReader([]byte(payload)))
	dec.UseNumber()
	var value interface{}
	if err := dec.Decode(&value); err != nil {
		return nil, fmt.Errorf("bridge: decode result: %w", err)
	}
	return decodeValue(value)
}

func (s *GRPCSpecialist) Close() error {
	return s.conn.Close()
}
