package statemachine

import (
	"context"
	"errors"
	"reflect"
	"testing"
)

func mustNew(t *testing.T, initial State) *Machine {
	t.Helper()
	m, err := New(initial)
	if err != nil {
		t.Fatalf("创建状态机失败: %v", err)
	}
	return m
}

func TestMachine_MissingInitialState(t *testing.T) {
	for _, initial := range []State{"", "   "} {
		if _, err := New(initial); !errors.Is(err, ErrMissingInitialState) {
			t.Errorf("New(%q) 期望 ErrMissingInitialState, got %v", initial, err)
		}
	}

	if _, err := New("a|b"); !errors.Is(err, ErrInvalidDescriptor) {
		t.Errorf("初始状态包含分隔符应返回 ErrInvalidDescriptor, got %v", err)
	}
}

func TestMachine_BeginIdempotent(t *testing.T) {
	ctx := context.Background()
	m := mustNew(t, "foo")

	calls := 0
	m.OnBegin(func(ctx context.Context) { calls++ })

	if m.State() != "" {
		t.Errorf("启动前状态应为空: got %v", m.State())
	}

	m.Begin(ctx).Begin(ctx).Begin(ctx)

	if calls != 1 {
		t.Errorf("启动回调应只执行一次: got %d", calls)
	}
	if !reflect.DeepEqual(m.History(), []State{"foo"}) {
		t.Errorf("历史错误: got %v", m.History())
	}
	if m.State() != "foo" {
		t.Errorf("状态错误: got %v, want foo", m.State())
	}
	if !m.Started() {
		t.Error("应已启动")
	}
}

func TestMachine_BeginWithoutCallback(t *testing.T) {
	m := mustNew(t, "foo")
	m.Begin(context.Background())
	if m.State() != "foo" {
		t.Errorf("状态错误: got %v", m.State())
	}
}

func TestMachine_LoadingReady(t *testing.T) {
	ctx := context.Background()
	m := mustNew(t, "loading")

	ready := false
	err := m.OnTransit("loading => ready", func(ctx context.Context, p Payload) error {
		ready = true
		return nil
	})
	if err != nil {
		t.Fatalf("注册转换失败: %v", err)
	}

	m.Begin(ctx)
	if err := m.Transit(ctx, "ready", nil); err != nil {
		t.Fatalf("转换失败: %v", err)
	}

	if !ready {
		t.Error("动作未执行")
	}
	if m.State() != "ready" {
		t.Errorf("状态错误: got %v, want ready", m.State())
	}
}

func TestMachine_ImplicitBegin(t *testing.T) {
	m := mustNew(t, "foo")
	began := false
	m.OnBegin(func(ctx context.Context) { began = true })
	_ = m.OnTransit("foo => bar", nil)

	if err := m.Transit(context.Background(), "bar", nil); err != nil {
		t.Fatalf("转换失败: %v", err)
	}
	if !began {
		t.Error("Transit 应隐式启动")
	}
	if !reflect.DeepEqual(m.History(), []State{"foo", "bar"}) {
		t.Errorf("历史错误: got %v", m.History())
	}
}

func TestMachine_ActionAndEventOrder(t *testing.T) {
	ctx := context.Background()
	m := mustNew(t, "a")

	var trace []string
	record := func(tag string) ListenerFunc {
		return func(ctx context.Context, p Payload) error {
			trace = append(trace, tag)
			return nil
		}
	}

	err := m.OnTransit("a => b", func(ctx context.Context, p Payload) error {
		trace = append(trace, "action")
		return nil
	}, WithEvents("first second"))
	if err != nil {
		t.Fatalf("注册转换失败: %v", err)
	}

	listener := record("first-1")
	m.On("first", listener).
		On("second", record("second")).
		On("first", record("first-2")).
		On("first", listener)

	if err := m.Transit(ctx, "b", nil); err != nil {
		t.Fatalf("转换失败: %v", err)
	}

	want := []string{"action", "first-1", "first-2", "first-1", "second"}
	if !reflect.DeepEqual(trace, want) {
		t.Errorf("调用顺序错误: got %v, want %v", trace, want)
	}
}

func TestMachine_ActionSeesHistoryBeforeTransition(t *testing.T) {
	ctx := context.Background()
	m := mustNew(t, "a")

	var seen State
	_ = m.OnTransit("a => b", func(ctx context.Context, p Payload) error {
		seen = m.State()
		return nil
	})

	if err := m.Transit(ctx, "b", nil); err != nil {
		t.Fatalf("转换失败: %v", err)
	}
	if seen != "a" {
		t.Errorf("动作中应看到转换前的状态: got %v", seen)
	}
}

func TestMachine_ThreePartTransition(t *testing.T) {
	ctx := context.Background()
	m := mustNew(t, "foo")

	calls := 0
	err := m.OnTransit("foo => bar => baz", func(ctx context.Context, p Payload) error {
		calls++
		return nil
	})
	if err != nil {
		t.Fatalf("注册转换失败: %v", err)
	}

	if err := m.Transit(ctx, "bar", nil); err != nil {
		t.Fatalf("foo -> bar 失败: %v", err)
	}
	if calls != 0 {
		t.Errorf("第一步不应触发三段规则: got %d", calls)
	}

	if err := m.Transit(ctx, "baz", nil); err != nil {
		t.Fatalf("bar -> baz 失败: %v", err)
	}
	if calls != 1 {
		t.Errorf("第二步应触发三段规则一次: got %d", calls)
	}
}

func TestMachine_DecompositionRules(t *testing.T) {
	m := mustNew(t, "a")
	_ = m.OnTransit("a => b => c", func(ctx context.Context, p Payload) error { return nil }, WithEvents("done"))

	rules := m.Rules()
	if len(rules) != 3 {
		t.Fatalf("规则数量错误: got %d, want 3", len(rules))
	}

	wantKeys := []string{"a|b", "b|c", "a|b|c"}
	for i, r := range rules {
		if r.Key != wantKeys[i] {
			t.Errorf("规则顺序错误: rules[%d] = %s, want %s", i, r.Key, wantKeys[i])
		}
	}
	for _, r := range rules[:2] {
		if !r.Generated || !r.Overwritable || r.HasAction || len(r.Events) != 0 {
			t.Errorf("自动规则属性错误: %+v", r)
		}
	}
	full := rules[2]
	if full.Generated || full.Overwritable || !full.HasAction || !reflect.DeepEqual(full.Events, []string{"done"}) {
		t.Errorf("显式规则属性错误: %+v", full)
	}
}

func TestMachine_GeneratedPairIndependentlyValid(t *testing.T) {
	ctx := context.Background()
	m := mustNew(t, "b")
	_ = m.OnTransit("a => b => c", func(ctx context.Context, p Payload) error {
		t.Error("三段规则不应在 b -> c 直接转换时触发")
		return nil
	})

	if err := m.Transit(ctx, "c", nil); err != nil {
		t.Fatalf("自动生成的 b -> c 应可用: %v", err)
	}
}

func TestMachine_DuplicateTransition(t *testing.T) {
	ctx := context.Background()
	m := mustNew(t, "a")

	var trace []string
	_ = m.OnTransit("a => b", func(ctx context.Context, p Payload) error {
		trace = append(trace, "original")
		return nil
	})

	err := m.OnTransit("a => b", func(ctx context.Context, p Payload) error {
		trace = append(trace, "replacement")
		return nil
	})
	if !errors.Is(err, ErrDuplicateTransition) {
		t.Fatalf("期望 ErrDuplicateTransition, got %v", err)
	}

	if err := m.Transit(ctx, "b", nil); err != nil {
		t.Fatalf("转换失败: %v", err)
	}
	if !reflect.DeepEqual(trace, []string{"original"}) {
		t.Errorf("原规则应保持不变: got %v", trace)
	}
}

func TestMachine_DuplicateMultiStepHasNoSideEffects(t *testing.T) {
	m := mustNew(t, "a")
	_ = m.OnTransit("a => b => c", nil)
	before := m.Rules()

	if err := m.OnTransit("a => b => c", nil); !errors.Is(err, ErrDuplicateTransition) {
		t.Fatalf("期望 ErrDuplicateTransition, got %v", err)
	}
	if !reflect.DeepEqual(m.Rules(), before) {
		t.Errorf("失败的注册不应修改规则: got %v", m.Rules())
	}
}

func TestMachine_OverrideGeneratedPair(t *testing.T) {
	ctx := context.Background()
	m := mustNew(t, "b")
	_ = m.OnTransit("a => b => c", nil)

	called := false
	err := m.OnTransit("b => c", func(ctx context.Context, p Payload) error {
		called = true
		return nil
	})
	if err != nil {
		t.Fatalf("显式规则应覆盖自动规则: %v", err)
	}

	rules := m.Rules()
	if rules[1].Key != "b|c" || rules[1].Generated || rules[1].Overwritable {
		t.Errorf("覆盖后应保留原位置且为显式规则: %+v", rules[1])
	}

	if err := m.Transit(ctx, "c", nil); err != nil {
		t.Fatalf("转换失败: %v", err)
	}
	if !called {
		t.Error("覆盖后的动作未执行")
	}
}

func TestMachine_GeneratedPairKeepsExplicit(t *testing.T) {
	ctx := context.Background()
	m := mustNew(t, "a")

	called := false
	_ = m.OnTransit("a => b", func(ctx context.Context, p Payload) error {
		called = true
		return nil
	})

	if err := m.OnTransit("a => b => c", nil); err != nil {
		t.Fatalf("多段规则不应与显式两段规则冲突: %v", err)
	}

	if err := m.Transit(ctx, "b", nil); err != nil {
		t.Fatalf("转换失败: %v", err)
	}
	if !called {
		t.Error("显式规则被自动规则覆盖")
	}
}

func TestMachine_GeneratedPairReplacesOverwritableExplicit(t *testing.T) {
	ctx := context.Background()
	m := mustNew(t, "a")

	called := false
	_ = m.OnTransit("b => c", func(ctx context.Context, p Payload) error {
		called = true
		return nil
	}, Overwritable())

	if err := m.OnTransit("a => b => c", nil); err != nil {
		t.Fatalf("注册失败: %v", err)
	}

	rules := m.Rules()
	if rules[0].Key != "b|c" || !rules[0].Generated || rules[0].HasAction {
		t.Errorf("可覆盖的显式规则应被自动规则原位替换: %+v", rules[0])
	}

	if err := m.Transit(ctx, "b", nil); err != nil {
		t.Fatalf("转换失败: %v", err)
	}
	if err := m.Transit(ctx, "c", nil); err != nil {
		t.Fatalf("转换失败: %v", err)
	}
	if called {
		t.Error("被替换的显式动作不应再执行")
	}
}

func TestMachine_OverwritableRegistration(t *testing.T) {
	ctx := context.Background()
	m := mustNew(t, "a")

	var trace []string
	_ = m.OnTransit("a => b", func(ctx context.Context, p Payload) error {
		trace = append(trace, "v1")
		return nil
	}, Overwritable())

	if err := m.OnTransit("a => b", func(ctx context.Context, p Payload) error {
		trace = append(trace, "v2")
		return nil
	}); err != nil {
		t.Fatalf("可覆盖规则应允许替换: %v", err)
	}

	if err := m.OnTransit("a => b", func(ctx context.Context, p Payload) error {
		trace = append(trace, "v3")
		return nil
	}, Overwritable()); err != nil {
		t.Fatalf("带 Overwritable 的注册应覆盖显式规则: %v", err)
	}

	if err := m.Transit(ctx, "b", nil); err != nil {
		t.Fatalf("转换失败: %v", err)
	}
	if !reflect.DeepEqual(trace, []string{"v3"}) {
		t.Errorf("应只执行最后注册的动作: got %v", trace)
	}
}

func TestMachine_UnknownAndIllegal(t *testing.T) {
	ctx := context.Background()
	m := mustNew(t, "foo")

	if err := m.Transit(ctx, "bar", nil); !errors.Is(err, ErrUnknownState) {
		t.Errorf("无规则时期望 ErrUnknownState, got %v", err)
	}

	_ = m.OnTransit("foo => bar => baz", nil)

	if err := m.Transit(ctx, "qux", nil); !errors.Is(err, ErrUnknownState) {
		t.Errorf("期望 ErrUnknownState, got %v", err)
	}
	if err := m.Transit(ctx, "baz", nil); !errors.Is(err, ErrIllegalTransition) {
		t.Errorf("期望 ErrIllegalTransition, got %v", err)
	}
	if err := m.Transit(ctx, "foo", nil); !errors.Is(err, ErrIllegalTransition) {
		t.Errorf("初始状态也是已知状态，期望 ErrIllegalTransition, got %v", err)
	}

	if !reflect.DeepEqual(m.History(), []State{"foo"}) {
		t.Errorf("失败后历史应不变: got %v", m.History())
	}
}

func TestMachine_InvalidDescriptor(t *testing.T) {
	m := mustNew(t, "a")

	for _, d := range []string{"a", "a => ", "a => b|c", " => b", ""} {
		if err := m.OnTransit(d, nil); !errors.Is(err, ErrInvalidDescriptor) {
			t.Errorf("OnTransit(%q) 期望 ErrInvalidDescriptor, got %v", d, err)
		}
	}
	if len(m.Rules()) != 0 {
		t.Errorf("非法描述不应注册规则: got %v", m.Rules())
	}
	if !reflect.DeepEqual(m.States(), []State{"a"}) {
		t.Errorf("非法描述不应新增状态: got %v", m.States())
	}
}

func TestMachine_WhitespaceFlexible(t *testing.T) {
	ctx := context.Background()
	m := mustNew(t, "foo")

	called := false
	err := m.OnTransit("  foo=>\nbar\t => baz=>bip\n\n", func(ctx context.Context, p Payload) error {
		called = true
		return nil
	})
	if err != nil {
		t.Fatalf("注册转换失败: %v", err)
	}

	for _, s := range []State{"bar", "baz", "bip"} {
		if err := m.Transit(ctx, s, nil); err != nil {
			t.Fatalf("转换到 %s 失败: %v", s, err)
		}
	}
	if !called {
		t.Error("四段规则未触发")
	}
}

func TestMachine_AllowTransitAlias(t *testing.T) {
	m := mustNew(t, "foo")
	if err := m.AllowTransit("foo => bar", nil); err != nil {
		t.Fatalf("AllowTransit 失败: %v", err)
	}
	if err := m.Transit(context.Background(), "bar", nil); err != nil {
		t.Fatalf("转换失败: %v", err)
	}
}

func TestMachine_CustomEventPayload(t *testing.T) {
	ctx := context.Background()
	m := mustNew(t, "foo")

	x := ""
	_ = m.OnTransit("foo => bar => baz", func(ctx context.Context, p Payload) error {
		x += "A" + p["foo"].(string)
		return nil
	}, WithEvents("didit"))
	m.On("didit", func(ctx context.Context, p Payload) error {
		x += "B" + p["foo"].(string)
		return nil
	})

	if err := m.Transit(ctx, "bar", nil); err != nil {
		t.Fatalf("转换失败: %v", err)
	}
	if x != "" {
		t.Errorf("第一步不应触发回调: got %q", x)
	}

	if err := m.Transit(ctx, "baz", Payload{"foo": "-"}); err != nil {
		t.Fatalf("转换失败: %v", err)
	}
	if x != "A-B-" {
		t.Errorf("回调顺序错误: got %q, want %q", x, "A-B-")
	}
}

func TestMachine_NilPayloadIsEmpty(t *testing.T) {
	m := mustNew(t, "a")
	_ = m.OnTransit("a => b", func(ctx context.Context, p Payload) error {
		if p == nil {
			t.Error("payload 不应为 nil")
		}
		p["touched"] = true
		return nil
	})
	if err := m.Transit(context.Background(), "b", nil); err != nil {
		t.Fatalf("转换失败: %v", err)
	}
}

func TestMachine_AllMatchingRulesFire(t *testing.T) {
	ctx := context.Background()
	m := mustNew(t, "x")

	var trace []string
	_ = m.OnTransit("a => b", func(ctx context.Context, p Payload) error {
		trace = append(trace, "a=>b")
		return nil
	})
	_ = m.OnTransit("x => a => b", func(ctx context.Context, p Payload) error {
		trace = append(trace, "x=>a=>b")
		return nil
	})
	_ = m.OnTransit("x => a", nil, Overwritable())

	if err := m.Transit(ctx, "a", nil); err != nil {
		t.Fatalf("转换失败: %v", err)
	}
	if err := m.Transit(ctx, "b", nil); err != nil {
		t.Fatalf("转换失败: %v", err)
	}

	want := []string{"a=>b", "x=>a=>b"}
	if !reflect.DeepEqual(trace, want) {
		t.Errorf("应按注册顺序触发全部匹配规则: got %v, want %v", trace, want)
	}
}

func TestMachine_SuffixMatchIsTokenAnchored(t *testing.T) {
	ctx := context.Background()
	m := mustNew(t, "bar")

	// "ar" 是 "bar" 的字符串后缀，但不是历史中的状态
	_ = m.OnTransit("ar => baz", nil)

	if err := m.Transit(ctx, "baz", nil); !errors.Is(err, ErrIllegalTransition) {
		t.Errorf("期望 ErrIllegalTransition, got %v", err)
	}
}

func TestMachine_ShortHistoryDoesNotMatchLongRule(t *testing.T) {
	ctx := context.Background()
	m := mustNew(t, "a")

	fired := false
	_ = m.OnTransit("x => a => b", func(ctx context.Context, p Payload) error {
		fired = true
		return nil
	})

	// 历史只有 [a]，只有自动生成的 a => b 匹配
	if err := m.Transit(ctx, "b", nil); err != nil {
		t.Fatalf("转换失败: %v", err)
	}
	if fired {
		t.Error("历史不足时三段规则不应匹配")
	}
}

func TestMachine_CallbackErrorAborts(t *testing.T) {
	ctx := context.Background()
	m := mustNew(t, "a")
	boom := errors.New("boom")

	listenerCalled := false
	_ = m.OnTransit("a => b", func(ctx context.Context, p Payload) error {
		return boom
	}, WithEvents("after"))
	m.On("after", func(ctx context.Context, p Payload) error {
		listenerCalled = true
		return nil
	})

	err := m.Transit(ctx, "b", nil)
	if !errors.Is(err, ErrCallbackFailed) || !errors.Is(err, boom) {
		t.Fatalf("期望包装 ErrCallbackFailed 与原始错误, got %v", err)
	}
	if listenerCalled {
		t.Error("动作失败后不应继续触发事件")
	}
	if m.State() != "a" {
		t.Errorf("失败后状态应不变: got %v", m.State())
	}
}

func TestMachine_ListenerErrorAborts(t *testing.T) {
	m := mustNew(t, "a")
	_ = m.OnTransit("a => b", nil, WithEvents("e"))
	m.On("e", func(ctx context.Context, p Payload) error { return errors.New("listener failed") })

	if err := m.Transit(context.Background(), "b", nil); !errors.Is(err, ErrCallbackFailed) {
		t.Fatalf("期望 ErrCallbackFailed, got %v", err)
	}
	if !reflect.DeepEqual(m.History(), []State{"a"}) {
		t.Errorf("失败后历史应不变: got %v", m.History())
	}
}

func TestMachine_ReentrantTransit(t *testing.T) {
	ctx := context.Background()
	m := mustNew(t, "a")

	_ = m.OnTransit("a => b", func(ctx context.Context, p Payload) error {
		return m.Transit(ctx, "c", nil)
	})
	_ = m.OnTransit("a => c", nil)
	_ = m.OnTransit("c => b", nil)

	if err := m.Transit(ctx, "b", nil); err != nil {
		t.Fatalf("转换失败: %v", err)
	}

	want := []State{"a", "c", "b"}
	if !reflect.DeepEqual(m.History(), want) {
		t.Errorf("内层转换应先于外层写入历史: got %v, want %v", m.History(), want)
	}
}

func TestMachine_Can(t *testing.T) {
	m := mustNew(t, "a")
	_ = m.OnTransit("a => b => c", nil)

	if !m.Can("b") {
		t.Error("启动前也应能判断 a -> b")
	}
	if m.Can("c") {
		t.Error("a -> c 不应允许")
	}

	_ = m.Transit(context.Background(), "b", nil)
	if !m.Can("c") {
		t.Error("b -> c 应允许")
	}
	if m.State() != "b" {
		t.Errorf("Can 不应修改状态: got %v", m.State())
	}
}

func TestMachine_HasTransition(t *testing.T) {
	m := mustNew(t, "a")
	_ = m.OnTransit("a => b => c", nil)

	for _, d := range []string{"a => b", "b=>c", "a => b => c"} {
		if !m.HasTransition(d) {
			t.Errorf("应存在规则 %q", d)
		}
	}
	if m.HasTransition("a => c") || m.HasTransition("bad") {
		t.Error("不应存在的规则")
	}
}

func TestMachine_StatesAndEvents(t *testing.T) {
	m := mustNew(t, "idle")
	_ = m.OnTransit("idle => run => stop", nil)
	m.On("z", func(ctx context.Context, p Payload) error { return nil })
	m.On("a", func(ctx context.Context, p Payload) error { return nil })
	m.On("ignored", nil)

	if want := []State{"idle", "run", "stop"}; !reflect.DeepEqual(m.States(), want) {
		t.Errorf("状态集合错误: got %v, want %v", m.States(), want)
	}
	if want := []string{"a", "z"}; !reflect.DeepEqual(m.Events(), want) {
		t.Errorf("事件集合错误: got %v, want %v", m.Events(), want)
	}
}

func TestMachine_PathLengthLimit(t *testing.T) {
	m, err := New("s0", WithHistoryLimit(6, 2))
	if err != nil {
		t.Fatalf("创建状态机失败: %v", err)
	}
	if m.MaxPathLength() != 4 {
		t.Fatalf("最大路径长度错误: got %d", m.MaxPathLength())
	}

	if err := m.OnTransit("s0 => s1 => s2 => s3 => s4", nil); !errors.Is(err, ErrInvalidDescriptor) {
		t.Errorf("超长路径期望 ErrInvalidDescriptor, got %v", err)
	}
	if err := m.OnTransit("s0 => s1 => s2 => s3", nil); err != nil {
		t.Errorf("最大长度路径应允许: %v", err)
	}
}

func TestMachine_InvalidHistoryLimitIgnored(t *testing.T) {
	m, _ := New("a", WithHistoryLimit(4, 3), WithHistoryLimit(8, 0))
	if m.MaxPathLength() != DefaultHistoryLimit-DefaultHistoryPrune {
		t.Errorf("非法选项应被忽略: got %d", m.MaxPathLength())
	}
}

func TestMachine_HistoryBounded(t *testing.T) {
	ctx := context.Background()
	m := mustNew(t, "ping")
	_ = m.OnTransit("ping => pong", nil)
	_ = m.OnTransit("pong => ping", nil)

	next := map[State]State{"ping": "pong", "pong": "ping"}
	for i := 0; i < 200; i++ {
		if err := m.Transit(ctx, next[m.State()], nil); err != nil {
			t.Fatalf("第 %d 次转换失败: %v", i, err)
		}
		if n := len(m.History()); n > DefaultHistoryLimit {
			t.Fatalf("历史超过上限: %d", n)
		}
	}
}

func TestMachine_MultiStepSurvivesPruning(t *testing.T) {
	ctx := context.Background()
	m, _ := New("a", WithHistoryLimit(6, 2))
	_ = m.OnTransit("a => b", nil)
	_ = m.OnTransit("b => a", nil)

	fired := 0
	_ = m.OnTransit("a => b => a => b", func(ctx context.Context, p Payload) error {
		fired++
		return nil
	})

	for i := 0; i < 20; i++ {
		target := State("b")
		if m.State() == "b" {
			target = "a"
		}
		if err := m.Transit(ctx, target, nil); err != nil {
			t.Fatalf("转换失败: %v", err)
		}
	}

	// 第 3 次及之后每次到达 b 都应触发
	if fired != 9 {
		t.Errorf("裁剪后多段规则仍应匹配: got %d, want 9", fired)
	}
}

func TestMachine_Snapshot(t *testing.T) {
	m := mustNew(t, "a")
	_ = m.OnTransit("a => b", func(ctx context.Context, p Payload) error { return nil }, WithEvents("x"))
	m.On("x", func(ctx context.Context, p Payload) error { return nil })
	_ = m.Transit(context.Background(), "b", nil)

	s := m.Snapshot()
	if s.Initial != "a" || s.State != "b" || !s.Started {
		t.Errorf("快照基本信息错误: %+v", s)
	}
	if !reflect.DeepEqual(s.History, []State{"a", "b"}) {
		t.Errorf("快照历史错误: %v", s.History)
	}
	if len(s.Rules) != 1 || !s.Rules[0].HasAction {
		t.Errorf("快照规则错误: %+v", s.Rules)
	}

	s.History[0] = "mutated"
	if m.History()[0] != "a" {
		t.Error("快照应为副本")
	}
}
