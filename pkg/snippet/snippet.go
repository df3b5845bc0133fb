// Package snippet holds a single thread's instruction stream and the
// machinery to analyze and lazily execute it: local/shared/volatile
// bookkeeping during construction, dependency analysis once construction is
// done, and a demand-driven evaluator for a single candidate execution.
package snippet

import (
	"fmt"
	"sort"

	"github.com/vfukala/JMM-Explorer/pkg/ir"
)

// MonitorError reports an Unlock of a monitor this snippet does not
// currently hold, discovered while checking monitor pairing in isolation.
type MonitorError struct {
	Monitor string
	Loc     ir.Location
}

// Snippet is one thread's program: its instruction stream, the
// bookkeeping built while a front-end emits it, and (after
// RunPreExecutionAnalysis) the dependency tables a driver needs to run it.
type Snippet struct {
	name          string
	nextTemporary int
	locals        []string
	localToID     map[string]int
	usedMonitors  map[string]struct{}
	usedShareds   map[string]struct{}
	usedVolatiles map[string]struct{}

	instructions  []ir.Instruction
	actions       []int // instruction index, one per action in program order
	instrToAction []int // instruction index -> position in actions, or -1
	frozen        bool

	argumentDeps  [][]int // per instruction: producer instruction indices (-1 = uninitialized local)
	transReadDeps [][]int // per instruction: sorted read-instruction indices it transitively depends on

	evaluated []bool
	value     []int32

	excepted      bool
	exceptionLine int
}

// New creates an empty Snippet with the given name (typically the source
// file path or thread label).
func New(name string) *Snippet {
	return &Snippet{
		name:          name,
		localToID:     make(map[string]int),
		usedMonitors:  make(map[string]struct{}),
		usedShareds:   make(map[string]struct{}),
		usedVolatiles: make(map[string]struct{}),
	}
}

// Name returns the snippet's name.
func (s *Snippet) Name() string { return s.name }

func (s *Snippet) requireUnfrozen() {
	if s.frozen {
		panic("snippet: emit called after pre-execution analysis")
	}
}

func (s *Snippet) localID(name string) int {
	if id, ok := s.localToID[name]; ok {
		return id
	}
	id := len(s.locals)
	s.locals = append(s.locals, name)
	s.localToID[name] = id
	return id
}

func (s *Snippet) allocateTemporary() int {
	name := fmt.Sprintf("ct%d", s.nextTemporary)
	s.nextTemporary++
	return s.localID(name)
}

func (s *Snippet) pushInstruction(instr ir.Instruction) int {
	idx := len(s.instructions)
	s.instructions = append(s.instructions, instr)
	if instr.IsAction() {
		s.actions = append(s.actions, idx)
	}
	return idx
}

// EmitRead lowers a read of name (local, shared, or volatile) at loc,
// returning a LocalValue the caller can use as an operand. It panics if
// name's prefix is not one the front-end is responsible for checking
// first — this is a contract between Snippet and its front-end, not a
// user-facing error.
func (s *Snippet) EmitRead(name string, loc ir.Location) ir.LocalValue {
	s.requireUnfrozen()
	kind, ok := ir.ClassifyPrefix(name)
	if !ok {
		panic(fmt.Sprintf("snippet: EmitRead: bad identifier %q", name))
	}
	switch kind {
	case 'l':
		return ir.LocalRef(s.localID(name))
	case 's':
		s.usedShareds[name] = struct{}{}
		target := s.allocateTemporary()
		s.pushInstruction(ir.Instruction{Kind: ir.KindSharedRead, Loc: loc, Target: target, Name: name})
		return ir.LocalRef(target)
	case 'v':
		s.usedVolatiles[name] = struct{}{}
		target := s.allocateTemporary()
		s.pushInstruction(ir.Instruction{Kind: ir.KindVolatileRead, Loc: loc, Target: target, Name: name})
		return ir.LocalRef(target)
	default:
		panic(fmt.Sprintf("snippet: EmitRead: identifier %q is not readable this way", name))
	}
}

// EmitWrite lowers an assignment to name (local, shared, or volatile).
func (s *Snippet) EmitWrite(name string, data ir.LocalValue, loc ir.Location) {
	s.requireUnfrozen()
	kind, ok := ir.ClassifyPrefix(name)
	if !ok {
		panic(fmt.Sprintf("snippet: EmitWrite: bad identifier %q", name))
	}
	switch kind {
	case 'l':
		target := s.localID(name)
		s.pushInstruction(ir.Instruction{Kind: ir.KindMove, Loc: loc, Target: target, Data: data})
	case 's':
		s.usedShareds[name] = struct{}{}
		s.pushInstruction(ir.Instruction{Kind: ir.KindSharedWrite, Loc: loc, Name: name, Data: data})
	case 'v':
		s.usedVolatiles[name] = struct{}{}
		s.pushInstruction(ir.Instruction{Kind: ir.KindVolatileWrite, Loc: loc, Name: name, Data: data})
	default:
		panic(fmt.Sprintf("snippet: EmitWrite: identifier %q is not writable this way", name))
	}
}

// EmitArithmetic lowers a binary arithmetic/bitwise expression, returning a
// LocalValue referring to its (temporary) result.
func (s *Snippet) EmitArithmetic(op0 ir.LocalValue, opType ir.ArithmeticOp, op1 ir.LocalValue, loc ir.Location) ir.LocalValue {
	s.requireUnfrozen()
	target := s.allocateTemporary()
	s.pushInstruction(ir.Instruction{Kind: ir.KindArithmetic, Loc: loc, Target: target, Op0: op0, ArithOp: opType, Op1: op1})
	return ir.LocalRef(target)
}

// EmitOpWrite lowers a compound assignment (name op= operand), equivalent
// to EmitWrite(name, EmitArithmetic(EmitRead(name), op, operand)).
func (s *Snippet) EmitOpWrite(name string, operand ir.LocalValue, opType ir.ArithmeticOp, loc ir.Location) {
	current := s.EmitRead(name, loc)
	updated := s.EmitArithmetic(current, opType, operand, loc)
	s.EmitWrite(name, updated, loc)
}

// EmitMethodCall lowers a monitor method call object.method(). The only
// legal calls are lock() and unlock() on an 'm'-prefixed identifier;
// anything else is a front-end contract violation.
func (s *Snippet) EmitMethodCall(object, method string, loc ir.Location) {
	s.requireUnfrozen()
	kind, ok := ir.ClassifyPrefix(object)
	if !ok || kind != 'm' {
		panic(fmt.Sprintf("snippet: EmitMethodCall: %q is not a monitor", object))
	}
	s.usedMonitors[object] = struct{}{}
	switch method {
	case "lock":
		s.pushInstruction(ir.Instruction{Kind: ir.KindLock, Loc: loc, Name: object})
	case "unlock":
		s.pushInstruction(ir.Instruction{Kind: ir.KindUnlock, Loc: loc, Name: object})
	default:
		panic(fmt.Sprintf("snippet: EmitMethodCall: unknown monitor method %q", method))
	}
}

// EmitStaticCall lowers a free function call. The only legal call is
// print(arg).
func (s *Snippet) EmitStaticCall(function string, arg ir.LocalValue, loc ir.Location) {
	s.requireUnfrozen()
	if function != "print" {
		panic(fmt.Sprintf("snippet: EmitStaticCall: unknown function %q", function))
	}
	s.pushInstruction(ir.Instruction{Kind: ir.KindPrint, Loc: loc, Data: arg})
}

// ActionCount returns the number of memory-model actions in this snippet.
func (s *Snippet) ActionCount() int { return len(s.actions) }

// GetAction returns the i-th action, in program order.
func (s *Snippet) GetAction(i int) ir.Instruction { return s.instructions[s.actions[i]] }

// SynchronizationActions returns the action-list indices (not instruction
// indices) of this snippet's synchronization actions, in program order.
func (s *Snippet) SynchronizationActions() []int {
	var out []int
	for i, instrIdx := range s.actions {
		if s.instructions[instrIdx].IsSynchronization() {
			out = append(out, i)
		}
	}
	return out
}

// CheckMonitorPairing scans this snippet's actions in isolation and
// reports every Unlock of a monitor it does not hold at that point. It
// does not consider other threads — cross-thread monitor legality is
// checked per candidate synchronization order, not per snippet.
func (s *Snippet) CheckMonitorPairing() []MonitorError {
	held := make(map[string]int)
	var errs []MonitorError
	for _, instrIdx := range s.actions {
		instr := s.instructions[instrIdx]
		switch instr.Kind {
		case ir.KindLock:
			held[instr.Name]++
		case ir.KindUnlock:
			if held[instr.Name] == 0 {
				errs = append(errs, MonitorError{Monitor: instr.Name, Loc: instr.Loc})
				continue
			}
			held[instr.Name]--
		}
	}
	return errs
}

// RunPreExecutionAnalysis computes argument_deps and trans_read_deps for
// every instruction and freezes the snippet against further Emit* calls.
// It is idempotent: calling it again recomputes the same tables from
// scratch and is safe to do, though there is never a reason to.
func (s *Snippet) RunPreExecutionAnalysis() {
	s.frozen = true

	n := len(s.instructions)
	s.argumentDeps = make([][]int, n)
	s.transReadDeps = make([][]int, n)
	s.instrToAction = make([]int, n)
	for i := range s.instrToAction {
		s.instrToAction[i] = -1
	}
	for actionIdx, instrIdx := range s.actions {
		s.instrToAction[instrIdx] = actionIdx
	}

	localWrittenAt := make([]int, len(s.locals))
	for i := range localWrittenAt {
		localWrittenAt[i] = -1
	}

	operandDep := func(v ir.LocalValue) (dep int, transDeps []int, literal bool) {
		if v.IsLiteral() {
			return 0, nil, true
		}
		producer := localWrittenAt[v.LocalID()]
		if producer == -1 {
			return -1, nil, false
		}
		return producer, s.transReadDeps[producer], false
	}

	for i, instr := range s.instructions {
		switch instr.Kind {
		case ir.KindLock, ir.KindUnlock:
			// no data touched

		case ir.KindSharedRead, ir.KindVolatileRead:
			s.transReadDeps[i] = []int{i}
			localWrittenAt[instr.Target] = i

		case ir.KindArithmetic:
			var deps []int
			var trans []int
			if dep, td, lit := operandDep(instr.Op0); !lit {
				deps = append(deps, dep)
				trans = mergeSortedUnique(trans, td)
			}
			if dep, td, lit := operandDep(instr.Op1); !lit {
				deps = append(deps, dep)
				trans = mergeSortedUnique(trans, td)
			}
			s.argumentDeps[i] = deps
			s.transReadDeps[i] = trans
			localWrittenAt[instr.Target] = i

		case ir.KindMove:
			if dep, td, lit := operandDep(instr.Data); !lit {
				s.argumentDeps[i] = []int{dep}
				s.transReadDeps[i] = td
			}
			localWrittenAt[instr.Target] = i

		case ir.KindSharedWrite, ir.KindVolatileWrite, ir.KindPrint:
			if dep, td, lit := operandDep(instr.Data); !lit {
				s.argumentDeps[i] = []int{dep}
				s.transReadDeps[i] = td
			}
		}
	}
}

func mergeSortedUnique(a, b []int) []int {
	if len(a) == 0 {
		return append([]int(nil), b...)
	}
	if len(b) == 0 {
		return append([]int(nil), a...)
	}
	out := make([]int, 0, len(a)+len(b))
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i] < b[j]:
			out = append(out, a[i])
			i++
		case a[i] > b[j]:
			out = append(out, b[j])
			j++
		default:
			out = append(out, a[i])
			i++
			j++
		}
	}
	out = append(out, a[i:]...)
	out = append(out, b[j:]...)
	return out
}

// GetWriteDependencies returns the action-list indices of the reads a write
// action transitively depends on, i.e. the reads that must have had their
// values supplied before this write can be evaluated.
func (s *Snippet) GetWriteDependencies(actionIndex int) []int {
	instrIdx := s.actions[actionIndex]
	reads := s.transReadDeps[instrIdx]
	out := make([]int, len(reads))
	for i, r := range reads {
		a := s.instrToAction[r]
		if a < 0 {
			panic("snippet: transitive read dependency is not an action")
		}
		out[i] = a
	}
	return out
}

// PrepareExecution resets per-execution state (the evaluator cache and the
// exception flag), ready for a fresh SupplyReadValue/ReadWrite/
// GetExecutionResults pass.
func (s *Snippet) PrepareExecution() {
	n := len(s.instructions)
	s.evaluated = make([]bool, n)
	s.value = make([]int32, n)
	s.excepted = false
	s.exceptionLine = 0
}

// SupplyReadValue records the value observed by the actionIndex-th action,
// which must be a SharedRead or VolatileRead.
func (s *Snippet) SupplyReadValue(actionIndex int, value int32) {
	instrIdx := s.actions[actionIndex]
	s.evaluated[instrIdx] = true
	s.value[instrIdx] = value
}

// ReadWrite evaluates the actionIndex-th action, which must be a
// SharedWrite or VolatileWrite, and returns the value it stores.
func (s *Snippet) ReadWrite(actionIndex int) int32 {
	instrIdx := s.actions[actionIndex]
	s.requestEval(instrIdx)
	return s.value[instrIdx]
}

// IsExcepted reports whether evaluation has hit a division or remainder by
// zero.
func (s *Snippet) IsExcepted() bool { return s.excepted }

// ExceptionLine returns the source line of the instruction that raised the
// exception. Only meaningful once IsExcepted is true.
func (s *Snippet) ExceptionLine() int { return s.exceptionLine }

// GetExecutionResults evaluates every Print in program order and returns
// the printed value sequence. If an exception occurs partway through, it
// returns whatever was printed before the exception and sets the
// exception flag; callers must check IsExcepted rather than trust the
// returned slice in that case.
func (s *Snippet) GetExecutionResults() []int32 {
	var out []int32
	for i, instr := range s.instructions {
		if instr.Kind != ir.KindPrint {
			continue
		}
		s.requestEval(i)
		if s.excepted {
			return out
		}
		out = append(out, s.value[i])
	}
	return out
}

// requestEval evaluates instruction i and everything it transitively
// depends on, using an explicit work stack rather than recursion so that
// long dependency chains (e.g. thousands of chained local++) cannot
// overflow the goroutine stack.
func (s *Snippet) requestEval(i int) {
	if s.evaluated[i] {
		return
	}
	type frame struct {
		idx      int
		expanded bool
	}
	stack := []frame{{idx: i}}
	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		if s.evaluated[top.idx] {
			stack = stack[:len(stack)-1]
			continue
		}
		if top.expanded {
			s.execEval(top.idx)
			if s.excepted {
				return
			}
			stack = stack[:len(stack)-1]
			continue
		}
		top.expanded = true
		instr := s.instructions[top.idx]
		if instr.IsRead() {
			panic("snippet: read requested before its value was supplied")
		}
		for _, dep := range s.argumentDeps[top.idx] {
			if dep == -1 {
				continue
			}
			if !s.evaluated[dep] {
				stack = append(stack, frame{idx: dep})
			}
		}
	}
}

func (s *Snippet) operandValue(v ir.LocalValue, deps []int, nextDep *int) int32 {
	if v.IsLiteral() {
		return int32(v.LiteralValue())
	}
	dep := deps[*nextDep]
	*nextDep++
	if dep == -1 {
		return 0
	}
	return s.value[dep]
}

func (s *Snippet) execEval(i int) {
	instr := s.instructions[i]
	deps := s.argumentDeps[i]
	next := 0
	switch instr.Kind {
	case ir.KindArithmetic:
		a := uint32(s.operandValue(instr.Op0, deps, &next))
		b := uint32(s.operandValue(instr.Op1, deps, &next))
		result, ok := ir.EvalArithmetic(instr.ArithOp, a, b)
		if !ok {
			s.excepted = true
			s.exceptionLine = instr.Loc.Line
			return
		}
		s.value[i] = int32(result)
	case ir.KindMove, ir.KindSharedWrite, ir.KindVolatileWrite, ir.KindPrint:
		s.value[i] = s.operandValue(instr.Data, deps, &next)
	default:
		panic(fmt.Sprintf("snippet: execEval: instruction kind %v cannot be evaluated this way", instr.Kind))
	}
	s.evaluated[i] = true
}

// UsedMonitors, UsedShareds, and UsedVolatiles return the sorted distinct
// variable names this snippet touches, for diagnostics and tooling.
func (s *Snippet) UsedMonitors() []string  { return sortedKeys(s.usedMonitors) }
func (s *Snippet) UsedShareds() []string   { return sortedKeys(s.usedShareds) }
func (s *Snippet) UsedVolatiles() []string { return sortedKeys(s.usedVolatiles) }

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Clone returns a Snippet sharing this one's (immutable, post-analysis) IR
// and dependency tables but with fresh, independent per-execution state.
// It is only valid to call after RunPreExecutionAnalysis, and exists so a
// parallel analysis sweep (pkg/analysis's optional worker pool) can run
// many candidate executions of the same snippet concurrently without the
// goroutines trampling each other's evaluator caches.
func (s *Snippet) Clone() *Snippet {
	if !s.frozen {
		panic("snippet: Clone called before RunPreExecutionAnalysis")
	}
	c := &Snippet{
		name:          s.name,
		nextTemporary: s.nextTemporary,
		locals:        s.locals,
		localToID:     s.localToID,
		usedMonitors:  s.usedMonitors,
		usedShareds:   s.usedShareds,
		usedVolatiles: s.usedVolatiles,
		instructions:  s.instructions,
		actions:       s.actions,
		instrToAction: s.instrToAction,
		argumentDeps:  s.argumentDeps,
		transReadDeps: s.transReadDeps,
		frozen:        true,
	}
	c.PrepareExecution()
	return c
}
