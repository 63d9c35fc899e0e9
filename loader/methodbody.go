package loader

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"strconv"

	"github.com/viant/javalineage/descriptor"
	"github.com/viant/javalineage/graph"
	"github.com/viant/javalineage/loader/classfile"
)

// methodBodyCtx carries the per-method state threaded through bytecode
// interpretation: the symbolic operand stack, the current binding of each
// local-variable slot to a node id, and the builder being populated.
type methodBodyCtx struct {
	builder *graph.Builder
	alloc   *descriptor.Allocator
	cp      *classfile.ConstantPool
	class   *classfile.ClassFile
	method  descriptor.MethodDescriptor
	code    *classfile.CodeAttribute
	fields  *fieldRegistry

	stack  []descriptor.NodeID
	locals map[int]descriptor.NodeID
	names  map[int]string // local slot -> declared name, from LocalVariableTable when present
	types  map[int]descriptor.TypeDescriptor

	instrByPC map[int]int // pc -> index into instrs
	instrs    []classfile.Instruction
	pcNodes   map[int][]descriptor.NodeID // pc -> node ids created while interpreting that instruction
	curPC     int

	constMeta map[descriptor.NodeID]graph.Node // constant node id -> the node as created, for enum-arg recovery
}

// emitMethodBody decodes a method's Code attribute into LocalVariable,
// ParameterNode, CallSiteNode, ReturnNode and ConstantNode graph nodes plus
// the DataFlowEdges connecting them, and records BranchScopes for
// conditional jumps. Individual methods that fail to decode are skipped
// with a verbose-sink warning; they never abort the whole load.
func emitMethodBody(b *graph.Builder, alloc *descriptor.Allocator, fields *fieldRegistry, class *classfile.ClassFile, cp *classfile.ConstantPool, m classfile.MethodInfo, method descriptor.MethodDescriptor, cfg LoaderConfig) {
	if m.Code == nil {
		return
	}
	instrs, err := classfile.Decode(m.Code.Code)
	if err != nil {
		warnf(cfg, "javalineage: skipping method %s: %v", method.Signature(), err)
		return
	}

	ctx := &methodBodyCtx{
		builder:   b,
		alloc:     alloc,
		cp:        cp,
		class:     class,
		method:    method,
		code:      m.Code,
		fields:    fields,
		locals:    map[int]descriptor.NodeID{},
		names:     map[int]string{},
		types:     map[int]descriptor.TypeDescriptor{},
		instrByPC: map[int]int{},
		instrs:    instrs,
		pcNodes:   map[int][]descriptor.NodeID{},
		constMeta: map[descriptor.NodeID]graph.Node{},
	}
	for i, in := range instrs {
		ctx.instrByPC[in.PC] = i
	}
	loadLocalVariableTable(ctx, m.Code)
	ctx.bindParameters(m)

	defer func() {
		if r := recover(); r != nil {
			warnf(cfg, "javalineage: recovered while decoding %s: %v", method.Signature(), r)
		}
	}()

	for idx := 0; idx < len(instrs); idx++ {
		ctx.curPC = instrs[idx].PC
		ctx.step(instrs[idx])
	}
}

func warnf(cfg LoaderConfig, format string, args ...interface{}) {
	if cfg.VerboseSink == nil {
		return
	}
	fmt.Fprintf(cfg.VerboseSink, format+"\n", args...)
}

// loadLocalVariableTable populates ctx.names/ctx.types from the method's
// LocalVariableTable attribute, when the class was compiled with debug info.
func loadLocalVariableTable(ctx *methodBodyCtx, code *classfile.CodeAttribute) {
	for _, a := range code.Attributes {
		if a.Name != "LocalVariableTable" {
			continue
		}
		r := bytes.NewReader(a.Info)
		var count uint16
		if binary.Read(r, binary.BigEndian, &count) != nil {
			return
		}
		for i := uint16(0); i < count; i++ {
			var row struct {
				StartPC uint16
				Length  uint16
				NameIdx uint16
				DescIdx uint16
				Index   uint16
			}
			if binary.Read(r, binary.BigEndian, &row) != nil {
				return
			}
			slot := int(row.Index)
			if _, exists := ctx.names[slot]; exists {
				continue
			}
			ctx.names[slot] = ctx.cp.UTF8At(row.NameIdx)
			ctx.types[slot] = parseFieldDescriptor(ctx.cp.UTF8At(row.DescIdx))
		}
	}
}

// bindParameters creates ParameterNodes for every declared parameter and
// binds them into the initial local-slot map, including the implicit "this"
// slot for instance methods.
func (ctx *methodBodyCtx) bindParameters(m classfile.MethodInfo) {
	slot := 0
	if !m.AccessFlags.Has(classfile.AccStatic) {
		slot = 1 // slot 0 holds "this"; not modelled as a ParameterNode
	}
	for i, pt := range ctx.method.ParameterTypes {
		id := ctx.alloc.Next()
		ctx.builder.AddNode(&graph.Node{
			ID:           id,
			Kind:         graph.KindParameter,
			DeclaredType: pt,
			OwningMethod: ctx.method,
			ParamIndex:   i,
			Name:         ctx.names[slot],
		})
		ctx.locals[slot] = id
		ctx.types[slot] = pt
		slot += slotWidth(pt)
	}
}

func (ctx *methodBodyCtx) push(id descriptor.NodeID) { ctx.stack = append(ctx.stack, id) }

func (ctx *methodBodyCtx) pop() (descriptor.NodeID, bool) {
	if len(ctx.stack) == 0 {
		return 0, false
	}
	id := ctx.stack[len(ctx.stack)-1]
	ctx.stack = ctx.stack[:len(ctx.stack)-1]
	return id, true
}

func (ctx *methodBodyCtx) peek() (descriptor.NodeID, bool) {
	if len(ctx.stack) == 0 {
		return 0, false
	}
	return ctx.stack[len(ctx.stack)-1], true
}

// localNode returns the node bound to slot, synthesizing a LocalVariable
// node the first time an uninitialized slot is referenced.
func (ctx *methodBodyCtx) localNode(slot int) descriptor.NodeID {
	if id, ok := ctx.locals[slot]; ok {
		return id
	}
	name := ctx.names[slot]
	if name == "" {
		name = "local_" + strconv.Itoa(slot)
	}
	t := ctx.types[slot]
	if t.IsEmpty() {
		t = descriptor.NewType("unknown")
	}
	id := ctx.alloc.Next()
	ctx.builder.AddNode(&graph.Node{
		ID:           id,
		Kind:         graph.KindLocalVariable,
		Name:         name,
		DeclaredType: t,
		OwningMethod: ctx.method,
	})
	ctx.locals[slot] = id
	return id
}

func (ctx *methodBodyCtx) assign(slot int, from descriptor.NodeID) {
	to := ctx.localNode(slot)
	ctx.builder.AddEdge(&graph.Edge{From: from, To: to, Variant: graph.VariantDataFlow, FlowKind: graph.Assign})
	ctx.locals[slot] = to
}

func (ctx *methodBodyCtx) constantNode(n graph.Node) descriptor.NodeID {
	id := ctx.alloc.Next()
	n.ID = id
	ctx.builder.AddNode(&n)
	ctx.recordNode(id)
	ctx.constMeta[id] = n
	return id
}

// recordNode associates a node id with the instruction currently being
// interpreted, so branch-scope reachability (reachableNodeIDs) can recover
// which nodes were produced within a given forward-reachable PC range.
func (ctx *methodBodyCtx) recordNode(id descriptor.NodeID) {
	ctx.pcNodes[ctx.curPC] = append(ctx.pcNodes[ctx.curPC], id)
}

// step interprets one instruction, mutating the operand stack and emitting
// graph nodes/edges for the instructions this engine cares about. This is a
// best-effort symbolic interpreter, not a bytecode verifier: stack-effect
// handling for arithmetic/conversion opcodes that carry no lineage-relevant
// meaning is approximate by design.
func (ctx *methodBodyCtx) step(in classfile.Instruction) {
	switch {
	case in.Opcode == classfile.OpAconstNull:
		ctx.push(ctx.constantNode(graph.Node{Kind: graph.KindConstant, ConstKind: graph.ConstNull, OwningMethod: ctx.method}))
	case opIsIconst(in.Opcode):
		ctx.push(ctx.constantNode(graph.Node{Kind: graph.KindConstant, ConstKind: graph.ConstInt, IntValue: iconstValue(in.Opcode), OwningMethod: ctx.method}))
	case opIsLconst(in.Opcode):
		ctx.push(ctx.constantNode(graph.Node{Kind: graph.KindConstant, ConstKind: graph.ConstLong, IntValue: lconstValue(in.Opcode), OwningMethod: ctx.method}))
	case in.Opcode == classfile.OpBipush || in.Opcode == classfile.OpSipush:
		ctx.push(ctx.constantNode(graph.Node{Kind: graph.KindConstant, ConstKind: graph.ConstInt, IntValue: int64(in.Const), OwningMethod: ctx.method}))
	case in.Opcode == classfile.OpLdc || in.Opcode == classfile.OpLdcW || in.Opcode == classfile.OpLdc2W:
		ctx.push(ctx.ldc(in))
	case opIsLoad(in.Opcode):
		ctx.push(ctx.localNode(loadSlot(in)))
	case opIsStore(in.Opcode):
		v, ok := ctx.pop()
		if ok {
			ctx.assign(storeSlot(in), v)
		}
	case in.Opcode == classfile.OpDup:
		if v, ok := ctx.peek(); ok {
			ctx.push(v)
		}
	case in.Opcode == classfile.OpPop || in.Opcode == classfile.OpPop2:
		ctx.pop()
	case in.Opcode == classfile.OpGetstatic:
		ctx.push(ctx.fieldNode(in, true))
	case in.Opcode == classfile.OpGetfield:
		ctx.pop() // receiver, not lineage-tracked structurally
		ctx.push(ctx.fieldNode(in, false))
	case in.Opcode == classfile.OpPutstatic:
		v, ok := ctx.pop()
		if ok {
			to := ctx.fieldNode(in, true)
			ctx.builder.AddEdge(&graph.Edge{From: v, To: to, Variant: graph.VariantDataFlow, FlowKind: graph.FieldStore})
		}
	case in.Opcode == classfile.OpPutfield:
		v, ok := ctx.pop()
		ctx.pop() // receiver
		if ok {
			to := ctx.fieldNode(in, false)
			ctx.builder.AddEdge(&graph.Edge{From: v, To: to, Variant: graph.VariantDataFlow, FlowKind: graph.FieldStore})
		}
	case in.IsInvoke():
		ctx.invoke(in)
	case in.Opcode == classfile.OpNew:
		ctx.push(ctx.constantNode(graph.Node{Kind: graph.KindConstant, ConstKind: graph.ConstNull, OwningMethod: ctx.method}))
	case in.IsReturn():
		ctx.emitReturn(in)
	case in.IsConditionalBranch():
		ctx.emitBranchScope(in)
	}
}

func (ctx *methodBodyCtx) ldc(in classfile.Instruction) descriptor.NodeID {
	e := ctx.cp.Entry(in.PoolIndex)
	switch e.Tag {
	case classfile.TagInteger:
		return ctx.constantNode(graph.Node{Kind: graph.KindConstant, ConstKind: graph.ConstInt, IntValue: int64(e.IntVal), OwningMethod: ctx.method})
	case classfile.TagLong:
		return ctx.constantNode(graph.Node{Kind: graph.KindConstant, ConstKind: graph.ConstLong, IntValue: e.LongVal, OwningMethod: ctx.method})
	case classfile.TagFloat:
		return ctx.constantNode(graph.Node{Kind: graph.KindConstant, ConstKind: graph.ConstFloat, FloatValue: float64(e.FloatVal), OwningMethod: ctx.method})
	case classfile.TagDouble:
		return ctx.constantNode(graph.Node{Kind: graph.KindConstant, ConstKind: graph.ConstDouble, FloatValue: e.DoubleVal, OwningMethod: ctx.method})
	case classfile.TagString:
		return ctx.constantNode(graph.Node{Kind: graph.KindConstant, ConstKind: graph.ConstString, StringValue: ctx.cp.StringAt(in.PoolIndex), OwningMethod: ctx.method})
	case classfile.TagClass:
		return ctx.constantNode(graph.Node{Kind: graph.KindConstant, ConstKind: graph.ConstNull, OwningMethod: ctx.method})
	default:
		return ctx.constantNode(graph.Node{Kind: graph.KindConstant, ConstKind: graph.ConstNull, OwningMethod: ctx.method})
	}
}

// fieldNode resolves (or lazily creates, via the shared fieldRegistry's
// at-most-once-per-graph rule) the FieldNode for a
// getfield/putfield/getstatic/putstatic instruction.
func (ctx *methodBodyCtx) fieldNode(in classfile.Instruction, isStatic bool) descriptor.NodeID {
	className, name, desc := ctx.cp.RefAt(in.PoolIndex)
	fd := descriptor.FieldDescriptor{
		DeclaringClass: descriptor.NewType(className),
		Name:           name,
		Type:           parseFieldDescriptor(desc),
	}
	return ctx.fields.nodeID(ctx.builder, ctx.alloc, fd, isStatic)
}

func (ctx *methodBodyCtx) invoke(in classfile.Instruction) {
	className, name, desc := in.CallOperand(ctx.cp)
	params, ret := parseMethodDescriptor(desc)
	callee := descriptor.MethodDescriptor{
		DeclaringClass: descriptor.NewType(className),
		Name:           name,
		ParameterTypes: params,
		ReturnType:     ret,
	}

	args := make([]descriptor.NodeID, len(params))
	for i := len(params) - 1; i >= 0; i-- {
		if v, ok := ctx.pop(); ok {
			args[i] = v
		}
	}
	var receiver *descriptor.NodeID
	if in.Opcode != classfile.OpInvokestatic && in.Opcode != classfile.OpInvokedynamic {
		if r, ok := ctx.pop(); ok {
			receiver = &r
		}
	}

	ctx.maybeRecordEnumConstant(callee, args)

	id := ctx.alloc.Next()
	ctx.builder.AddNode(&graph.Node{
		ID:            id,
		Kind:          graph.KindCallSite,
		CallingMethod: ctx.method,
		Callee:        callee,
		Receiver:      receiver,
		Arguments:     args,
		SourceLine:    ctx.code.LineNumberAt(in.PC),
	})
	ctx.recordNode(id)
	for _, a := range args {
		ctx.builder.AddEdge(&graph.Edge{From: a, To: id, Variant: graph.VariantDataFlow, FlowKind: graph.ArgumentPass})
	}
	// CallEdge is not synthesized here: method declarations are not
	// themselves graph nodes, so there is no second endpoint to link to.
	// Call-graph information lives entirely in CallSiteNode.Callee.

	if ret.ClassName != "void" {
		ctx.push(id)
	}
}

// maybeRecordEnumConstant recognises the shape emitted by javac for an enum
// constant initialiser inside <clinit>: a self-constructor call whose first
// two arguments are the synthetic constant name and ordinal. The remaining
// arguments are recorded in the enum table, keyed by the constant name
// recovered from the name argument's constant-node metadata.
func (ctx *methodBodyCtx) maybeRecordEnumConstant(callee descriptor.MethodDescriptor, args []descriptor.NodeID) {
	if !ctx.class.IsEnum() || !callee.IsConstructor() || callee.DeclaringClass.ClassName != ctx.class.ThisClass {
		return
	}
	if len(args) < 2 {
		return
	}
	nameNode, ok := ctx.constMeta[args[0]]
	if !ok || nameNode.ConstKind != graph.ConstString {
		return
	}
	ctx.builder.AddEnumConstructorArgs(ctx.class.ThisClass, nameNode.StringValue, append([]descriptor.NodeID(nil), args[2:]...))
}

func (ctx *methodBodyCtx) emitReturn(in classfile.Instruction) {
	id := ctx.alloc.Next()
	n := graph.Node{ID: id, Kind: graph.KindReturn, OwningMethod: ctx.method}
	ctx.builder.AddNode(&n)
	ctx.recordNode(id)
	if in.Opcode != classfile.OpReturn {
		if v, ok := ctx.pop(); ok {
			ctx.builder.AddEdge(&graph.Edge{From: v, To: id, Variant: graph.VariantDataFlow, FlowKind: graph.ReturnValue})
		}
	}
}

// emitBranchScope records a BranchScope for a conditional jump. The
// comparand is the constant (or node) compared against the condition's
// top-of-stack operand(s); comparison operator is derived from the opcode.
// Branch node sets are a simple forward-reachability approximation: every
// node created by an instruction reachable from the true target,
// respectively the fall-through, without following edges back through the
// other branch's unique entry point.
func (ctx *methodBodyCtx) emitBranchScope(in classfile.Instruction) {
	var comparand descriptor.NodeID
	var condition descriptor.NodeID
	switch in.Opcode {
	case classfile.OpIfIcmpeq, classfile.OpIfIcmpne, classfile.OpIfIcmplt,
		classfile.OpIfIcmpge, classfile.OpIfIcmpgt, classfile.OpIfIcmple,
		classfile.OpIfAcmpeq, classfile.OpIfAcmpne:
		rhs, _ := ctx.pop()
		lhs, _ := ctx.pop()
		comparand = rhs
		condition = lhs
	default:
		v, _ := ctx.pop()
		condition = v
		comparand = ctx.constantNode(graph.Node{Kind: graph.KindConstant, ConstKind: graph.ConstInt, IntValue: 0, OwningMethod: ctx.method})
	}

	op := branchOperator(in.Opcode)
	fallthroughPC := nextPC(ctx, in)
	trueIDs := ctx.reachableNodeIDs(in.BranchPC, fallthroughPC)
	falseIDs := ctx.reachableNodeIDs(fallthroughPC, in.BranchPC)

	scope := graph.NewBranchScope(condition, ctx.method, graph.Comparison{Operator: op, Comparand: comparand}, trueIDs, falseIDs)
	ctx.builder.AddBranchScope(scope)
}

func nextPC(ctx *methodBodyCtx, in classfile.Instruction) int {
	if idx, ok := ctx.instrByPC[in.PC]; ok && idx+1 < len(ctx.instrs) {
		return ctx.instrs[idx+1].PC
	}
	return -1
}

// reachableNodeIDs performs forward BFS over the instruction successor graph
// starting at startPC, stopping traversal (for this approximation) at
// stopPC, and collects node ids created by call-site, return and constant
// instructions encountered along the way. It is intentionally not a precise
// post-dominator computation: merge points after the branch appear in both
// sets.
func (ctx *methodBodyCtx) reachableNodeIDs(startPC, stopPC int) []descriptor.NodeID {
	if startPC < 0 {
		return nil
	}
	visited := map[int]bool{}
	queue := []int{startPC}
	var ids []descriptor.NodeID
	for len(queue) > 0 {
		pc := queue[0]
		queue = queue[1:]
		if pc == stopPC || visited[pc] {
			continue
		}
		idx, ok := ctx.instrByPC[pc]
		if !ok {
			continue
		}
		visited[pc] = true
		in := ctx.instrs[idx]
		ids = append(ids, ctx.pcNodes[pc]...)
		switch {
		case in.Opcode == classfile.OpGoto:
			queue = append(queue, in.BranchPC)
		case in.IsConditionalBranch():
			queue = append(queue, in.BranchPC)
			if idx+1 < len(ctx.instrs) {
				queue = append(queue, ctx.instrs[idx+1].PC)
			}
		case in.IsReturn():
			// no successor
		default:
			if idx+1 < len(ctx.instrs) {
				queue = append(queue, ctx.instrs[idx+1].PC)
			}
		}
	}
	return ids
}

func opIsIconst(op classfile.Opcode) bool {
	return op >= classfile.OpIconstM1 && op <= classfile.OpIconst5
}

func iconstValue(op classfile.Opcode) int64 {
	return int64(op) - int64(classfile.OpIconst0)
}

func opIsLconst(op classfile.Opcode) bool {
	return op == classfile.OpLconst0 || op == classfile.OpLconst1
}

func lconstValue(op classfile.Opcode) int64 {
	if op == classfile.OpLconst0 {
		return 0
	}
	return 1
}

func opIsLoad(op classfile.Opcode) bool {
	switch {
	case op == classfile.OpIload || op == classfile.OpLload || op == classfile.OpFload || op == classfile.OpDload || op == classfile.OpAload:
		return true
	case op >= classfile.OpIload0 && op <= classfile.OpIload3:
		return true
	case op >= classfile.OpLload0 && op <= classfile.OpLload3:
		return true
	case op >= classfile.OpFload0 && op <= classfile.OpFload3:
		return true
	case op >= classfile.OpDload0 && op <= classfile.OpDload3:
		return true
	case op >= classfile.OpAload0 && op <= classfile.OpAload3:
		return true
	}
	return false
}

func loadSlot(in classfile.Instruction) int {
	switch {
	case in.Opcode == classfile.OpIload || in.Opcode == classfile.OpLload || in.Opcode == classfile.OpFload || in.Opcode == classfile.OpDload || in.Opcode == classfile.OpAload:
		return in.Local
	case in.Opcode >= classfile.OpIload0 && in.Opcode <= classfile.OpIload3:
		return int(in.Opcode - classfile.OpIload0)
	case in.Opcode >= classfile.OpLload0 && in.Opcode <= classfile.OpLload3:
		return int(in.Opcode - classfile.OpLload0)
	case in.Opcode >= classfile.OpFload0 && in.Opcode <= classfile.OpFload3:
		return int(in.Opcode - classfile.OpFload0)
	case in.Opcode >= classfile.OpDload0 && in.Opcode <= classfile.OpDload3:
		return int(in.Opcode - classfile.OpDload0)
	case in.Opcode >= classfile.OpAload0 && in.Opcode <= classfile.OpAload3:
		return int(in.Opcode - classfile.OpAload0)
	}
	return 0
}

func opIsStore(op classfile.Opcode) bool {
	switch {
	case op == classfile.OpIstore || op == classfile.OpLstore || op == classfile.OpFstore || op == classfile.OpDstore || op == classfile.OpAstore:
		return true
	case op >= classfile.OpIstore0 && op <= classfile.OpIstore3:
		return true
	case op >= classfile.OpLstore0 && op <= classfile.OpLstore3:
		return true
	case op >= classfile.OpFstore0 && op <= classfile.OpFstore3:
		return true
	case op >= classfile.OpDstore0 && op <= classfile.OpDstore3:
		return true
	case op >= classfile.OpAstore0 && op <= classfile.OpAstore3:
		return true
	}
	return false
}

func storeSlot(in classfile.Instruction) int {
	switch {
	case in.Opcode == classfile.OpIstore || in.Opcode == classfile.OpLstore || in.Opcode == classfile.OpFstore || in.Opcode == classfile.OpDstore || in.Opcode == classfile.OpAstore:
		return in.Local
	case in.Opcode >= classfile.OpIstore0 && in.Opcode <= classfile.OpIstore3:
		return int(in.Opcode - classfile.OpIstore0)
	case in.Opcode >= classfile.OpLstore0 && in.Opcode <= classfile.OpLstore3:
		return int(in.Opcode - classfile.OpLstore0)
	case in.Opcode >= classfile.OpFstore0 && in.Opcode <= classfile.OpFstore3:
		return int(in.Opcode - classfile.OpFstore0)
	case in.Opcode >= classfile.OpDstore0 && in.Opcode <= classfile.OpDstore3:
		return int(in.Opcode - classfile.OpDstore0)
	case in.Opcode >= classfile.OpAstore0 && in.Opcode <= classfile.OpAstore3:
		return int(in.Opcode - classfile.OpAstore0)
	}
	return 0
}

func branchOperator(op classfile.Opcode) graph.ComparisonOperator {
	switch op {
	case classfile.OpIfeq, classfile.OpIfIcmpeq, classfile.OpIfAcmpeq:
		return graph.EQ
	case classfile.OpIfne, classfile.OpIfIcmpne, classfile.OpIfAcmpne, classfile.OpIfnonnull:
		return graph.NE
	case classfile.OpIflt, classfile.OpIfIcmplt:
		return graph.LT
	case classfile.OpIfge, classfile.OpIfIcmpge:
		return graph.GE
	case classfile.OpIfgt, classfile.OpIfIcmpgt:
		return graph.GT
	case classfile.OpIfle, classfile.OpIfIcmple:
		return graph.LE
	case classfile.OpIfnull:
		return graph.EQ
	}
	return graph.EQ
}
