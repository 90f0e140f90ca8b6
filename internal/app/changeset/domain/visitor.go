package domain

// FieldVisitor receives each field of a change set through the method matching
// its kind.
type FieldVisitor interface {
	VisitStringField(field *StringField)
	VisitIntegerField(field *IntegerField)
	VisitFloatField(field *FloatField)
	VisitBooleanField(field *BooleanField)
	VisitTemporalField(field *TemporalField)
	VisitEntityField(field *EntityField)
}

// EmptyFieldVisitor ignores every field. Embed it to handle only some kinds.
type EmptyFieldVisitor struct{}

func (EmptyFieldVisitor) VisitStringField(*StringField)     {}
func (EmptyFieldVisitor) VisitIntegerField(*IntegerField)   {}
func (EmptyFieldVisitor) VisitFloatField(*FloatField)       {}
func (EmptyFieldVisitor) VisitBooleanField(*BooleanField)   {}
func (EmptyFieldVisitor) VisitTemporalField(*TemporalField) {}
func (EmptyFieldVisitor) VisitEntityField(*EntityField)     {}

// FieldVisitorFuncs is a FieldVisitor built from optional handlers.
// Kinds without a handler are ignored.
type FieldVisitorFuncs struct {
	String   func(field *StringField)
	Integer  func(field *IntegerField)
	Float    func(field *FloatField)
	Boolean  func(field *BooleanField)
	Temporal func(field *TemporalField)
	Entity   func(field *EntityField)
}

func (v FieldVisitorFuncs) VisitStringField(field *StringField) {
	if v.String != nil {
		v.String(field)
	}
}

func (v FieldVisitorFuncs) VisitIntegerField(field *IntegerField) {
	if v.Integer != nil {
		v.Integer(field)
	}
}

func (v FieldVisitorFuncs) VisitFloatField(field *FloatField) {
	if v.Float != nil {
		v.Float(field)
	}
}

func (v FieldVisitorFuncs) VisitBooleanField(field *BooleanField) {
	if v.Boolean != nil {
		v.Boolean(field)
	}
}

func (v FieldVisitorFuncs) VisitTemporalField(field *TemporalField) {
	if v.Temporal != nil {
		v.Temporal(field)
	}
}

func (v FieldVisitorFuncs) VisitEntityField(field *EntityField) {
	if v.Entity != nil {
		v.Entity(field)
	}
}

// CallbackFieldVisitor calls a callback for fields of one kind only.
//
//	v := domain.NewCallbackFieldVisitor(func(f *domain.StringField) { ... })
//	changeSet.ApplyVisitor(v, "name")
type CallbackFieldVisitor[T Field] struct {
	callback func(field T)
}

// NewCallbackFieldVisitor creates a visitor for the field kind T.
func NewCallbackFieldVisitor[T Field](callback func(field T)) *CallbackFieldVisitor[T] {
	return &CallbackFieldVisitor[T]{callback: callback}
}

func (v *CallbackFieldVisitor[T]) VisitStringField(field *StringField)     { v.dispatch(field) }
func (v *CallbackFieldVisitor[T]) VisitIntegerField(field *IntegerField)   { v.dispatch(field) }
func (v *CallbackFieldVisitor[T]) VisitFloatField(field *FloatField)       { v.dispatch(field) }
func (v *CallbackFieldVisitor[T]) VisitBooleanField(field *BooleanField)   { v.dispatch(field) }
func (v *CallbackFieldVisitor[T]) VisitTemporalField(field *TemporalField) { v.dispatch(field) }
func (v *CallbackFieldVisitor[T]) VisitEntityField(field *EntityField)     { v.dispatch(field) }

func (v *CallbackFieldVisitor[T]) dispatch(field Field) {
	if typed, ok := field.(T); ok {
		v.callback(typed)
	}
}
