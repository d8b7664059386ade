package worker

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"Burrow_Hole/pkg/logger"
)

const DefaultGrace = 5 * time.Second

type Task struct {
	Name string
	Run  func(ctx context.Context) error
}

// Supervisor 所有任务共享一个 ctx；收到 SIGINT/SIGTERM 或任一任务出错都会取消它
type Supervisor struct {
	tasks   []Task
	grace   time.Duration
	signals []os.Signal
}

func NewSupervisor(grace time.Duration) *Supervisor {
	if grace <= 0 {
		grace = DefaultGrace
	}
	return &Supervisor{grace: grace, signals: []os.Signal{os.Interrupt, syscall.SIGTERM}}
}

func (s *Supervisor) Add(name string, run func(ctx context.Context) error) {
	s.tasks = append(s.tasks, Task{Name: name, Run: run})
}

// Run 阻塞到所有任务退出。收到退出信号后最多再等 grace，
// 超时的任务直接丢下，返回 nil 让进程正常退出
func (s *Supervisor) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, s.signals...)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	for _, t := range s.tasks {
		g.Go(func() error {
			logger.Info("task started", zap.String("task", t.Name))
			if err := t.Run(gctx); err != nil {
				logger.Error("task exited with error", zap.String("task", t.Name), zap.Error(err))
				return fmt.Errorf("%s: %w", t.Name, err)
			}
			logger.Info("task exited", zap.String("task", t.Name))
			return nil
		})
	}

	done := make(chan error, 1)
	go func() { done <- g.Wait() }()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutdown signal received, waiting for tasks", zap.Duration("grace", s.grace))
	timer := time.NewTimer(s.grace)
	defer timer.Stop()
	select {
	case err := <-done:
		return err
	case <-timer.C:
		logger.Warn("grace period elapsed, abandoning running tasks")
		return nil
	}
}

// HTTPTask 把 http.Server 包装成任务，ctx 取消时优雅关闭
func HTTPTask(srv *http.Server, grace time.Duration) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		errCh := make(chan error, 1)
		go func() {
			logger.Info("http server listening", zap.String("addr", srv.Addr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
				return
			}
			errCh <- nil
		}()

		select {
		case err := <-errCh:
			return err
		case <-ctx.Done():
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), grace)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("http server shutdown", zap.Error(err))
		}
		return <-errCh
	}
}
