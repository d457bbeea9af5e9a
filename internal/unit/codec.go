package unit

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"fortio.org/safecast"
	"github.com/vmihailenco/msgpack/v5"

	"ilnorm/internal/ast"
	"ilnorm/internal/source"
	"ilnorm/internal/symbols"
	"ilnorm/internal/types"
)

var (
	// ErrSchema reports a file written with a different SchemaVersion.
	ErrSchema = errors.New("unit: unsupported schema")
	// ErrMalformed reports a structurally invalid file.
	ErrMalformed = errors.New("unit: malformed file")
)

// Format selects the on-disk encoding.
type Format uint8

const (
	FormatMsgpack Format = iota
	FormatJSON
)

func (f Format) String() string {
	switch f {
	case FormatMsgpack:
		return "msgpack"
	case FormatJSON:
		return "json"
	default:
		return fmt.Sprintf("Format(%d)", f)
	}
}

// FormatForPath picks the encoding from the file extension: .ilu and .mp are
// msgpack, .json is JSON.
func FormatForPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".ilu", ".mp":
		return FormatMsgpack, nil
	case ".json":
		return FormatJSON, nil
	default:
		return 0, fmt.Errorf("unit: unknown file extension %q", filepath.Ext(path))
	}
}

// Marshal encodes f.
func Marshal(f *File, format Format) ([]byte, error) {
	switch format {
	case FormatMsgpack:
		return msgpack.Marshal(f)
	case FormatJSON:
		return json.MarshalIndent(f, "", "  ")
	default:
		return nil, fmt.Errorf("unit: cannot encode %s", format)
	}
}

// Unmarshal decodes data and checks the schema version.
func Unmarshal(data []byte, format Format) (*File, error) {
	var f File
	var err error
	switch format {
	case FormatMsgpack:
		err = msgpack.Unmarshal(data, &f)
	case FormatJSON:
		err = json.Unmarshal(data, &f)
	default:
		err = fmt.Errorf("unit: cannot decode %s", format)
	}
	if err != nil {
		return nil, err
	}
	if f.Schema != SchemaVersion {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrSchema, f.Schema, SchemaVersion)
	}
	return &f, nil
}

// Load reads, decodes and rebuilds the unit stored at path.
func Load(path string, id source.UnitID) (*Unit, error) {
	format, err := FormatForPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	f, err := Unmarshal(data, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	u, err := Decode(f, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return u, nil
}

// Save encodes u and writes it to path atomically.
func Save(path string, u *Unit) error {
	format, err := FormatForPath(path)
	if err != nil {
		return err
	}
	f, err := Encode(u)
	if err != nil {
		return err
	}
	data, err := Marshal(f, format)
	if err != nil {
		return err
	}
	return WriteFileAtomic(path, data)
}

// WriteFileAtomic writes data to a temp file next to path and renames it over path.
func WriteFileAtomic(path string, data []byte) (err error) {
	dir := filepath.Dir(path)
	if err = os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, "tmp-*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()
	if _, err = tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	// Атомарная замена
	return os.Rename(tmp.Name(), path)
}

var kindByName = func() map[string]ast.Kind {
	m := make(map[string]ast.Kind)
	for k := ast.KindIdent; k <= ast.KindUnit; k++ {
		m[k.String()] = k
	}
	return m
}()

// Decode rebuilds a Unit from f. Every node must be reachable from Root
// exactly once.
func Decode(f *File, id source.UnitID) (*Unit, error) {
	if f == nil {
		return nil, fmt.Errorf("%w: nil file", ErrMalformed)
	}
	decls := make([]*symbols.TypeSymbol, 0, len(f.Types))
	for _, tr := range f.Types {
		decls = append(decls, typeFromRecord(tr))
	}
	table, err := symbols.NewTable(symbols.WithBuiltins(decls...)...)
	if err != nil {
		return nil, err
	}
	u := New(id, f.Name, table)
	d := decoder{f: f, u: u, seen: make([]bool, len(f.Nodes))}
	root, err := d.node(f.Root)
	if err != nil {
		return nil, err
	}
	if u.Tree.Kind(root) != ast.KindUnit {
		return nil, fmt.Errorf("%w: root is %s, want unit", ErrMalformed, u.Tree.Kind(root))
	}
	for i, ok := range d.seen {
		if !ok {
			return nil, fmt.Errorf("%w: node %d unreachable from root", ErrMalformed, i+1)
		}
	}
	return u, nil
}

func typeFromRecord(tr TypeRecord) *symbols.TypeSymbol {
	sym := &symbols.TypeSymbol{
		FullName:  types.TypeName(tr.Name),
		Base:      types.TypeName(tr.Base),
		ValueType: tr.ValueType,
	}
	for _, mr := range tr.Methods {
		if mr == nil {
			continue
		}
		m := &symbols.MethodSymbol{
			Declaring: types.TypeName(mr.Declaring),
			Name:      mr.Name,
			Return:    types.TypeName(mr.Return),
			Static:    mr.Static,
		}
		for _, p := range mr.Params {
			m.Params = append(m.Params, symbols.ParamSymbol{Name: p.Name, Type: types.TypeName(p.Type)})
		}
		sym.Methods = append(sym.Methods, m)
	}
	return sym
}

type decoder struct {
	f    *File
	u    *Unit
	seen []bool
}

func (d *decoder) errorf(idx uint32, format string, args ...any) error {
	return fmt.Errorf("%w: node %d: %s", ErrMalformed, idx, fmt.Sprintf(format, args...))
}

func (d *decoder) node(idx uint32) (ast.NodeID, error) {
	if idx == 0 || int(idx) > len(d.f.Nodes) {
		return ast.NoNodeID, d.errorf(idx, "index out of range")
	}
	if d.seen[idx-1] {
		return ast.NoNodeID, d.errorf(idx, "referenced more than once")
	}
	d.seen[idx-1] = true
	rec := &d.f.Nodes[idx-1]
	kind, ok := kindByName[rec.Kind]
	if !ok {
		return ast.NoNodeID, d.errorf(idx, "unknown kind %q", rec.Kind)
	}
	id, err := d.build(idx, kind, rec)
	if err != nil {
		return ast.NoNodeID, err
	}
	if rec.Annot != "" {
		if err := d.u.Annots.SetType(id, types.TypeName(rec.Annot)); err != nil {
			return ast.NoNodeID, d.errorf(idx, "%v", err)
		}
	}
	if rec.Callee != nil {
		d.u.Annots.SetMethod(id, refFromRecord(rec.Callee))
	}
	return id, nil
}

// kids decodes exactly n children (n < 0 means any number).
func (d *decoder) kids(idx uint32, rec *NodeRecord, n int) ([]ast.NodeID, error) {
	if n >= 0 && len(rec.Kids) != n {
		return nil, d.errorf(idx, "%s wants %d children, got %d", rec.Kind, n, len(rec.Kids))
	}
	out := make([]ast.NodeID, len(rec.Kids))
	for i, k := range rec.Kids {
		id, err := d.node(k)
		if err != nil {
			return nil, err
		}
		out[i] = id
	}
	return out, nil
}

func (d *decoder) build(idx uint32, kind ast.Kind, rec *NodeRecord) (ast.NodeID, error) {
	t := d.u.Tree
	sp := source.Span{Unit: d.u.ID, Start: rec.Start, End: rec.End}
	switch kind {
	case ast.KindIdent:
		return t.NewIdent(sp, rec.Name), nil
	case ast.KindLiteral:
		return t.NewLiteral(sp, rec.Type, rec.Value), nil
	case ast.KindNull:
		return t.NewNull(sp), nil
	case ast.KindThis:
		return t.NewThis(sp), nil
	case ast.KindTypeRef:
		return t.NewTypeRef(sp, rec.Name), nil
	case ast.KindBinary:
		op, ok := ast.ParseBinaryOp(rec.Op)
		if !ok {
			return ast.NoNodeID, d.errorf(idx, "unknown binary operator %q", rec.Op)
		}
		ks, err := d.kids(idx, rec, 2)
		if err != nil {
			return ast.NoNodeID, err
		}
		return t.NewBinary(sp, op, ks[0], ks[1]), nil
	case ast.KindUnary:
		op, ok := ast.ParseUnaryOp(rec.Op)
		if !ok {
			return ast.NoNodeID, d.errorf(idx, "unknown unary operator %q", rec.Op)
		}
		ks, err := d.kids(idx, rec, 1)
		if err != nil {
			return ast.NoNodeID, err
		}
		return t.NewUnary(sp, op, ks[0]), nil
	case ast.KindCast:
		if rec.Type == "" {
			return ast.NoNodeID, d.errorf(idx, "cast without target type")
		}
		ks, err := d.kids(idx, rec, 1)
		if err != nil {
			return ast.NoNodeID, err
		}
		return t.NewCast(sp, rec.Type, ks[0]), nil
	case ast.KindCall:
		if len(rec.Kids) == 0 {
			return ast.NoNodeID, d.errorf(idx, "call without target")
		}
		ks, err := d.kids(idx, rec, -1)
		if err != nil {
			return ast.NoNodeID, err
		}
		return t.NewCall(sp, ks[0], ks[1:]...), nil
	case ast.KindMember:
		ks, err := d.kids(idx, rec, 1)
		if err != nil {
			return ast.NoNodeID, err
		}
		return t.NewMember(sp, ks[0], rec.Name), nil
	case ast.KindArrayCreate:
		if len(rec.Kids) == 0 {
			return ast.NoNodeID, d.errorf(idx, "array-create without size slot")
		}
		size := ast.NoNodeID
		if rec.Kids[0] != 0 {
			var err error
			if size, err = d.node(rec.Kids[0]); err != nil {
				return ast.NoNodeID, err
			}
		}
		elems := make([]ast.NodeID, 0, len(rec.Kids)-1)
		for _, k := range rec.Kids[1:] {
			e, err := d.node(k)
			if err != nil {
				return ast.NoNodeID, err
			}
			elems = append(elems, e)
		}
		return t.NewArrayCreate(sp, rec.Type, size, elems...), nil
	case ast.KindReturn:
		if len(rec.Kids) == 0 {
			return t.NewReturn(sp, ast.NoNodeID), nil
		}
		ks, err := d.kids(idx, rec, 1)
		if err != nil {
			return ast.NoNodeID, err
		}
		return t.NewReturn(sp, ks[0]), nil
	case ast.KindExprStmt:
		ks, err := d.kids(idx, rec, 1)
		if err != nil {
			return ast.NoNodeID, err
		}
		return t.NewExprStmt(sp, ks[0]), nil
	case ast.KindBlock:
		ks, err := d.kids(idx, rec, -1)
		if err != nil {
			return ast.NoNodeID, err
		}
		return t.NewBlock(sp, ks...), nil
	case ast.KindMethod:
		body := ast.NoNodeID
		if len(rec.Kids) > 0 {
			ks, err := d.kids(idx, rec, 1)
			if err != nil {
				return ast.NoNodeID, err
			}
			body = ks[0]
		}
		params := make([]ast.ParamSpec, len(rec.Params))
		for i, p := range rec.Params {
			params[i] = ast.ParamSpec{Name: p.Name, Type: p.Type}
		}
		return t.NewMethod(sp, rec.Declaring, rec.Name, rec.Type, params, body), nil
	case ast.KindUnit:
		ks, err := d.kids(idx, rec, -1)
		if err != nil {
			return ast.NoNodeID, err
		}
		return t.NewUnit(sp, rec.Name, ks...), nil
	default:
		return ast.NoNodeID, d.errorf(idx, "unsupported kind %s", kind)
	}
}

func refFromRecord(mr *MethodRecord) symbols.MethodRef {
	ref := symbols.MethodRef{
		Declaring: types.TypeName(mr.Declaring),
		Name:      mr.Name,
		Return:    types.TypeName(mr.Return),
		Params:    make([]types.TypeName, len(mr.Params)),
	}
	for i, p := range mr.Params {
		ref.Params[i] = types.TypeName(p.Type)
	}
	return ref
}

func refToRecord(ref symbols.MethodRef) *MethodRecord {
	mr := &MethodRecord{
		Declaring: string(ref.Declaring),
		Name:      ref.Name,
		Return:    string(ref.Return),
	}
	for _, p := range ref.Params {
		mr.Params = append(mr.Params, ParamRecord{Type: string(p)})
	}
	return mr
}

// Encode flattens u into a File. Nodes are numbered in preorder from the
// root; detached nodes and their annotations are not written. Types are
// written when the resolver is a *symbols.Table; builtins without methods
// are left out since Decode adds them back.
func Encode(u *Unit) (*File, error) {
	if u == nil || u.Tree == nil || !u.Tree.Root.IsValid() {
		return nil, errors.New("unit: nothing to encode")
	}
	e := encoder{u: u, f: &File{Schema: SchemaVersion, Name: u.Name}}
	root, err := e.node(u.Tree.Root)
	if err != nil {
		return nil, err
	}
	e.f.Root = root
	if table, ok := u.Symbols.(*symbols.Table); ok {
		e.f.Types = typeRecords(table)
	}
	return e.f, nil
}

func typeRecords(table *symbols.Table) []TypeRecord {
	builtin := make(map[string]bool)
	for _, b := range symbols.Builtins() {
		builtin[b.FullName.FullName()] = true
	}
	syms := table.Types()
	slices.SortFunc(syms, func(a, b *symbols.TypeSymbol) int {
		return strings.Compare(a.FullName.FullName(), b.FullName.FullName())
	})
	out := make([]TypeRecord, 0, len(syms))
	for _, sym := range syms {
		if builtin[sym.FullName.FullName()] && len(sym.Methods) == 0 {
			continue
		}
		tr := TypeRecord{Name: string(sym.FullName), Base: string(sym.Base), ValueType: sym.ValueType}
		for _, m := range sym.Methods {
			mr := &MethodRecord{Declaring: string(m.Declaring), Name: m.Name, Return: string(m.Return), Static: m.Static}
			for _, p := range m.Params {
				mr.Params = append(mr.Params, ParamRecord{Name: p.Name, Type: string(p.Type)})
			}
			tr.Methods = append(tr.Methods, mr)
		}
		out = append(out, tr)
	}
	return out
}

type encoder struct {
	u *Unit
	f *File
}

func (e *encoder) node(id ast.NodeID) (uint32, error) {
	t := e.u.Tree
	n := t.Get(id)
	if n == nil {
		return 0, fmt.Errorf("unit: encode of unknown node %d", id)
	}
	e.f.Nodes = append(e.f.Nodes, NodeRecord{})
	idx, err := safecast.Conv[uint32](len(e.f.Nodes))
	if err != nil {
		return 0, fmt.Errorf("unit: too many nodes: %w", err)
	}
	// rec заполняем по индексу: append детей может переаллоцировать срез
	var rec NodeRecord
	rec.Kind, rec.Start, rec.End = n.Kind.String(), n.Span.Start, n.Span.End
	if typ, ok := e.u.Annots.Type(id); ok {
		rec.Annot = string(typ)
	}
	if ref, ok := e.u.Annots.Method(id); ok {
		rec.Callee = refToRecord(ref)
	}
	kid := func(child ast.NodeID) error {
		k, err := e.node(child)
		if err != nil {
			return err
		}
		rec.Kids = append(rec.Kids, k)
		return nil
	}
	switch n.Kind {
	case ast.KindIdent:
		d, _ := t.Ident(id)
		rec.Name = t.Name(d.Name)
	case ast.KindLiteral:
		d, _ := t.Literal(id)
		rec.Type, rec.Value = t.Name(d.Type), t.Name(d.Value)
	case ast.KindNull, ast.KindThis:
	case ast.KindTypeRef:
		rec.Name, _ = t.TypeRefName(id)
	case ast.KindBinary:
		d, _ := t.Binary(id)
		rec.Op = d.Op.String()
		err = errors.Join(kid(d.Left), kid(d.Right))
	case ast.KindUnary:
		d, _ := t.Unary(id)
		rec.Op = d.Op.String()
		err = kid(d.Operand)
	case ast.KindCast:
		d, _ := t.Cast(id)
		rec.Type, _ = t.TypeRefName(d.Type)
		err = kid(d.Value)
	case ast.KindCall:
		d, _ := t.Call(id)
		err = kid(d.Target)
		for _, a := range d.Args {
			if err != nil {
				break
			}
			err = kid(a)
		}
	case ast.KindMember:
		d, _ := t.Member(id)
		rec.Name = t.Name(d.Name)
		err = kid(d.Target)
	case ast.KindArrayCreate:
		d, _ := t.ArrayCreate(id)
		rec.Type, _ = t.TypeRefName(d.Elem)
		if d.Size.IsValid() {
			err = kid(d.Size)
		} else {
			rec.Kids = append(rec.Kids, 0)
		}
		for _, el := range d.Elements {
			if err != nil {
				break
			}
			err = kid(el)
		}
	case ast.KindReturn:
		d, _ := t.Return(id)
		if d.Value.IsValid() {
			err = kid(d.Value)
		}
	case ast.KindExprStmt:
		d, _ := t.ExprStmt(id)
		err = kid(d.Value)
	case ast.KindBlock:
		d, _ := t.Block(id)
		for _, s := range d.Stmts {
			if err = kid(s); err != nil {
				break
			}
		}
	case ast.KindMethod:
		d, _ := t.Method(id)
		rec.Name, rec.Declaring = t.Name(d.Name), t.Name(d.Declaring)
		rec.Type, _ = t.TypeRefName(d.Return)
		for _, p := range d.Params {
			pt, _ := t.TypeRefName(p.Type)
			rec.Params = append(rec.Params, ParamRecord{Name: t.Name(p.Name), Type: pt})
		}
		if d.Body.IsValid() {
			err = kid(d.Body)
		}
	case ast.KindUnit:
		d, _ := t.Unit(id)
		rec.Name = t.Name(d.Name)
		for _, m := range d.Members {
			if err = kid(m); err != nil {
				break
			}
		}
	default:
		err = fmt.Errorf("unit: cannot encode %s node %d", n.Kind, id)
	}
	if err != nil {
		return 0, err
	}
	e.f.Nodes[idx-1] = rec
	return idx, nil
}
