package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/junbin-yang/go-smallfsm/pkg/config"
	"github.com/junbin-yang/go-smallfsm/pkg/definition"
	"github.com/junbin-yang/go-smallfsm/pkg/logger"
	"github.com/junbin-yang/go-smallfsm/pkg/statemachine"
)

// buildTraced 构建状态机，动作与事件都输出到 out
// 定义中引用的动作名均以打印代替
func buildTraced(def *definition.Definition, out io.Writer, log *logger.ZapLogger) (*statemachine.Machine, error) {
	actions := make(map[string]statemachine.ActionFunc)
	for _, t := range def.Transitions {
		if t.Action == "" {
			continue
		}
		name := t.Action
		actions[name] = func(ctx context.Context, p statemachine.Payload) error {
			fmt.Fprintf(out, "    action %s %s\n", name, formatPayload(p))
			return nil
		}
	}

	return definition.Build(def,
		definition.WithActions(actions),
		definition.WithEventHook(func(event string) statemachine.ListenerFunc {
			return func(ctx context.Context, p statemachine.Payload) error {
				fmt.Fprintf(out, "    event  %s\n", event)
				return nil
			}
		}),
		definition.WithMachineOptions(statemachine.WithLogger(log.With(logger.String("machine", def.Name)))),
	)
}

// loadMachine 读取定义并构建状态机
func loadMachine(path string, out io.Writer, log *logger.ZapLogger) (*definition.Definition, *statemachine.Machine, error) {
	def, err := definition.LoadFile(path, config.WithLogger(log))
	if err != nil {
		return nil, nil, err
	}
	m, err := buildChecked(def, out, log)
	if err != nil {
		return nil, nil, err
	}
	return def, m, nil
}

func buildChecked(def *definition.Definition, out io.Writer, log *logger.ZapLogger) (*statemachine.Machine, error) {
	if err := def.Validate(); err != nil {
		return nil, err
	}
	return buildTraced(def, out, log)
}

// errorKind 返回错误分类名称，定义层错误优先
func errorKind(err error) string {
	kinds := []struct {
		target error
		name   string
	}{
		{config.ErrConfigNotFound, "ConfigNotFound"},
		{definition.ErrUnknownAction, "UnknownAction"},
		{definition.ErrInvalidDefinition, "InvalidDefinition"},
		{statemachine.ErrMissingInitialState, "MissingInitialState"},
		{statemachine.ErrInvalidDescriptor, "InvalidDescriptor"},
		{statemachine.ErrDuplicateTransition, "DuplicateTransition"},
		{statemachine.ErrUnknownState, "UnknownState"},
		{statemachine.ErrIllegalTransition, "IllegalTransition"},
		{statemachine.ErrCallbackFailed, "CallbackFailed"},
	}
	for _, k := range kinds {
		if errors.Is(err, k.target) {
			return k.name
		}
	}
	return "Error"
}

func formatPayload(p statemachine.Payload) string {
	if len(p) == 0 {
		return "{}"
	}
	return fmt.Sprintf("%v", map[string]interface{}(p))
}
