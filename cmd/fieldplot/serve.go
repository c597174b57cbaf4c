package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"

	"google.golang.org/grpc"

	"github.com/banshee-data/fieldplot/internal/predictor"
)

// serve exposes a table or lattice predictor over gRPC until ctx ends.
func (o *options) serve(ctx context.Context) error {
	model, closeModel, err := o.openModel()
	if err != nil {
		return err
	}
	defer closeModel()
	if _, remote := model.(*predictor.Remote); remote {
		return fmt.Errorf("serve needs a table or lattice predictor, not grpc")
	}

	lis, err := net.Listen("tcp", o.listen)
	if err != nil {
		return fmt.Errorf("listen %s: %w", o.listen, err)
	}

	s := grpc.NewServer()
	predictor.Register(s, model)

	return serveUntilDone(ctx, s, lis, o.modelSpec)
}

// serveUntilDone runs s on lis until ctx ends or Serve fails. The stop
// watcher exits in both cases.
func serveUntilDone(ctx context.Context, s *grpc.Server, lis net.Listener, name string) error {
	done := make(chan struct{})
	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		select {
		case <-ctx.Done():
			s.GracefulStop()
		case <-done:
		}
	}()

	log.Printf("[predictor] serving %s on %s", name, lis.Addr())
	err := s.Serve(lis)
	close(done)
	<-stopped
	if errors.Is(err, grpc.ErrServerStopped) {
		// ctx ended before Serve started.
		return nil
	}
	return err
}
