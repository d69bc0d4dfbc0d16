package js_ast

type PropertyKind uint8

const (
	PropertyNormal PropertyKind = iota
	PropertyGet
	PropertySet
	PropertySpread
	PropertyClassStaticBlock
)

type PropertyFlags uint8

const (
	PropertyIsComputed PropertyFlags = 1 << iota
	PropertyIsMethod
	PropertyIsStatic
)

func (flags PropertyFlags) Has(flag PropertyFlags) bool {
	return (flags & flag) != 0
}

// A member of an object literal or a class body. Spreads and static blocks
// have no key.
type Property struct {
	NodeBase
	KeyOrNil   Node
	ValueOrNil Node
	Kind       PropertyKind
	Flags      PropertyFlags

	accessorCallOptions *CallOptions
	returnExpression    Entity
}

func (p *Property) EachChild(fn func(Node)) {
	eachNonNil(fn, p.KeyOrNil, p.ValueOrNil)
}

func (p *Property) initialise() {
	p.accessorCallOptions = &CallOptions{}
}

func (p *Property) Bind() {
	p.NodeBase.Bind()
	switch p.Kind {
	case PropertyGet:
		p.getReturnExpression()
	case PropertySpread:
		p.ValueOrNil.DeoptimizePath(Path{UnknownKey, UnknownKey})
	}
}

// The key as a property name, or false if it is only known at run-time
func (p *Property) staticKey(origin DeoptimizableEntity, tracker *PathTracker) (PathKey, bool) {
	if p.KeyOrNil == nil {
		return UnknownKey, false
	}
	if !p.Flags.Has(PropertyIsComputed) {
		switch key := p.KeyOrNil.(type) {
		case *EString:
			return Key(key.Value), true
		case *ENumber:
			return Key(NumberToString(key.Value)), true
		case *EPrivateIdentifier:
			return Key("#" + key.Name), true
		}
	}
	return p.KeyOrNil.GetLiteralValueAtPath(EmptyPath, tracker, origin).ToPropertyKey()
}

func (p *Property) value() Entity {
	if p.ValueOrNil == nil {
		return UndefinedExpression
	}
	return p.ValueOrNil
}

func (p *Property) getReturnExpression() Entity {
	if p.returnExpression == nil {
		p.returnExpression = UnknownExpression
		p.returnExpression = p.value().GetReturnExpressionWhenCalledAtPath(EmptyPath, &p.build().SharedTracker, p)
	}
	return p.returnExpression
}

// The getter may now return something else
func (p *Property) DeoptimizeCache() {
	p.returnExpression = UnknownExpression
}

func (p *Property) DeoptimizePath(path Path) {
	switch p.Kind {
	case PropertyGet:
		p.getReturnExpression().DeoptimizePath(path)
	case PropertySpread, PropertyClassStaticBlock:
	default:
		p.value().DeoptimizePath(path)
	}
}

func (p *Property) GetLiteralValueAtPath(path Path, tracker *PathTracker, origin DeoptimizableEntity) LiteralValue {
	switch p.Kind {
	case PropertyGet:
		return p.getReturnExpression().GetLiteralValueAtPath(path, tracker, origin)
	case PropertySpread, PropertyClassStaticBlock, PropertySet:
		return UnknownValue
	}
	return p.value().GetLiteralValueAtPath(path, tracker, origin)
}

func (p *Property) GetReturnExpressionWhenCalledAtPath(path Path, tracker *PathTracker, origin DeoptimizableEntity) Entity {
	switch p.Kind {
	case PropertyGet:
		return p.getReturnExpression().GetReturnExpressionWhenCalledAtPath(path, tracker, origin)
	case PropertySpread, PropertyClassStaticBlock, PropertySet:
		return UnknownExpression
	}
	return p.value().GetReturnExpressionWhenCalledAtPath(path, tracker, origin)
}

func (p *Property) HasEffects(ctx *InclusionContext) bool {
	if p.Flags.Has(PropertyIsComputed) && p.KeyOrNil.HasEffects(ctx) {
		return true
	}
	return p.ValueOrNil != nil && p.ValueOrNil.HasEffects(ctx)
}

// Reading a getter calls it
func (p *Property) HasEffectsWhenAccessedAtPath(path Path, ctx *InclusionContext) bool {
	switch p.Kind {
	case PropertyGet:
		if ctx.Accessed.TrackEntityAtPathAndGetIfTracked(path, p) {
			return false
		}
		return p.value().HasEffectsWhenCalledAtPath(EmptyPath, p.accessorCallOptions, ctx) ||
			(len(path) > 0 && p.getReturnExpression().HasEffectsWhenAccessedAtPath(path, ctx))
	case PropertySet:
		return len(path) > 0
	case PropertySpread, PropertyClassStaticBlock:
		return len(path) > 0
	}
	return p.value().HasEffectsWhenAccessedAtPath(path, ctx)
}

// Writing to a setter calls it
func (p *Property) HasEffectsWhenAssignedAtPath(path Path, ctx *InclusionContext) bool {
	switch p.Kind {
	case PropertyGet:
		if ctx.Assigned.TrackEntityAtPathAndGetIfTracked(path, p) {
			return false
		}
		return len(path) == 0 || p.getReturnExpression().HasEffectsWhenAssignedAtPath(path, ctx)
	case PropertySet:
		if ctx.Assigned.TrackEntityAtPathAndGetIfTracked(path, p) {
			return false
		}
		return len(path) > 0 || p.value().HasEffectsWhenCalledAtPath(EmptyPath, p.accessorCallOptions, ctx)
	case PropertySpread, PropertyClassStaticBlock:
		return true
	}
	return p.value().HasEffectsWhenAssignedAtPath(path, ctx)
}

func (p *Property) HasEffectsWhenCalledAtPath(path Path, call *CallOptions, ctx *InclusionContext) bool {
	switch p.Kind {
	case PropertyGet:
		if ctx.calledTracker(call).TrackEntityAtPathAndGetIfTracked(path, call, p) {
			return false
		}
		return p.getReturnExpression().HasEffectsWhenCalledAtPath(path, call, ctx)
	case PropertySet, PropertySpread, PropertyClassStaticBlock:
		return true
	}
	return p.value().HasEffectsWhenCalledAtPath(path, call, ctx)
}

func (p *Property) MayModifyThisWhenCalledAtPath(path Path, tracker *PathTracker) bool {
	switch p.Kind {
	case PropertyGet:
		return p.getReturnExpression().MayModifyThisWhenCalledAtPath(path, tracker)
	case PropertySet, PropertySpread, PropertyClassStaticBlock:
		return true
	}
	return p.value().MayModifyThisWhenCalledAtPath(path, tracker)
}

type propertyMapEntry struct {
	exactMatchRead  *Property
	exactMatchWrite *Property

	// The exact match followed by every unmatchable member declared after
	// it, since any of those may override it
	propertiesRead  []*Property
	propertiesWrite []*Property
}

// The property map of an object literal or of the static side of a class.
// Precise answers are given per key until the object is lost track of.
type ObjectEntity struct {
	owner      Node
	properties []*Property

	// The table answering members that are not own properties
	prototypeMembers memberTable

	propertyMap      map[string]*propertyMapEntry
	unmatchableRead  []*Property
	unmatchableWrite []*Property

	hasUnknownDeoptimizedProperty bool
	deoptimizedPaths              map[string]bool
	expressionsToBeDeoptimized    map[string][]DeoptimizableEntity
}

func NewObjectEntity(owner Node, properties []*Property, prototypeMembers memberTable) *ObjectEntity {
	return &ObjectEntity{
		owner:            owner,
		properties:       properties,
		prototypeMembers: prototypeMembers,
	}
}

func (o *ObjectEntity) build() *BuildContext {
	return o.owner.Base().build()
}

// Scans members from last to first so that later members shadow earlier ones
func (o *ObjectEntity) getPropertyMap() map[string]*propertyMapEntry {
	if o.propertyMap != nil {
		return o.propertyMap
	}
	o.propertyMap = make(map[string]*propertyMapEntry)
	o.deoptimizedPaths = make(map[string]bool)
	o.expressionsToBeDeoptimized = make(map[string][]DeoptimizableEntity)
	tracker := &o.build().SharedTracker
	for i := len(o.properties) - 1; i >= 0; i-- {
		property := o.properties[i]
		if property.Kind == PropertySpread {
			o.unmatchableRead = append(o.unmatchableRead, property)
			continue
		}
		if property.Kind == PropertyClassStaticBlock {
			continue
		}
		isWrite := property.Kind != PropertyGet
		isRead := property.Kind != PropertySet
		key, ok := property.staticKey(o, tracker)
		if !ok {
			if isRead {
				o.unmatchableRead = append(o.unmatchableRead, property)
			} else {
				o.unmatchableWrite = append(o.unmatchableWrite, property)
			}
			continue
		}
		entry, ok := o.propertyMap[key.Name]
		if !ok {
			entry = &propertyMapEntry{}
			if isRead {
				entry.exactMatchRead = property
				entry.propertiesRead = append([]*Property{property}, o.unmatchableRead...)
			}
			if isWrite {
				entry.exactMatchWrite = property
			}
			if isWrite && !isRead {
				entry.propertiesWrite = append([]*Property{property}, o.unmatchableWrite...)
			}
			o.propertyMap[key.Name] = entry
			continue
		}
		if isRead && entry.exactMatchRead == nil {
			entry.exactMatchRead = property
			entry.propertiesRead = append(append(entry.propertiesRead, property), o.unmatchableRead...)
		}
		if isWrite && !isRead && entry.exactMatchWrite == nil {
			entry.exactMatchWrite = property
			entry.propertiesWrite = append(append(entry.propertiesWrite, property), o.unmatchableWrite...)
		}
	}
	return o.propertyMap
}

func (o *ObjectEntity) addConsumer(key string, origin DeoptimizableEntity) {
	if origin != nil {
		o.expressionsToBeDeoptimized[key] = append(o.expressionsToBeDeoptimized[key], origin)
	}
}

// Irrevocable. Every member escapes and every consumer is told.
func (o *ObjectEntity) deoptimizeAllProperties() {
	o.hasUnknownDeoptimizedProperty = true
	for _, property := range o.properties {
		property.DeoptimizePath(UnknownPath)
	}
	consumers := o.expressionsToBeDeoptimized
	o.expressionsToBeDeoptimized = make(map[string][]DeoptimizableEntity)
	for _, list := range consumers {
		for _, consumer := range list {
			consumer.DeoptimizeCache()
		}
	}
}

func (o *ObjectEntity) isDeoptimizedKey(key PathKey) bool {
	return o.hasUnknownDeoptimizedProperty || key.Unknown || o.deoptimizedPaths[key.Name]
}

// Nothing is known about a key once more than one member may provide it
func (o *ObjectEntity) exactReadMatch(key PathKey) (*Property, bool) {
	entry := o.propertyMap[key.Name]
	if entry == nil || entry.exactMatchRead == nil {
		return nil, false
	}
	if len(entry.propertiesRead) > 1 {
		o.deoptimizeAllProperties()
		return nil, false
	}
	return entry.exactMatchRead, true
}

func (o *ObjectEntity) DeoptimizeCache() {
	if !o.hasUnknownDeoptimizedProperty {
		o.deoptimizeAllProperties()
	}
}

func (o *ObjectEntity) DeoptimizePath(path Path) {
	if o.hasUnknownDeoptimizedProperty {
		return
	}
	propertyMap := o.getPropertyMap()
	if len(path) == 0 || path[0].Unknown {
		o.deoptimizeAllProperties()
		return
	}
	key := path[0]
	if len(path) == 1 && !o.deoptimizedPaths[key.Name] {
		o.deoptimizedPaths[key.Name] = true

		// Only exact matches hand out literals and return values
		consumers := o.expressionsToBeDeoptimized[key.Name]
		delete(o.expressionsToBeDeoptimized, key.Name)
		for _, consumer := range consumers {
			consumer.DeoptimizeCache()
		}
	}
	subPath := path.Rest()
	if len(path) == 1 {
		subPath = UnknownPath
	}
	if entry := propertyMap[key.Name]; entry != nil {
		for _, property := range entry.propertiesRead {
			property.DeoptimizePath(subPath)
		}
	}
	for _, property := range o.unmatchableRead {
		property.DeoptimizePath(subPath)
	}
}

func (o *ObjectEntity) GetLiteralValueAtPath(path Path, tracker *PathTracker, origin DeoptimizableEntity) LiteralValue {
	propertyMap := o.getPropertyMap()
	if len(path) == 0 || o.isDeoptimizedKey(path[0]) {
		return UnknownValue
	}
	key := path[0]
	if len(path) == 1 && propertyMap[key.Name] == nil && !isKnownMember(o.prototypeMembers, key) && len(o.unmatchableRead) == 0 {
		o.addConsumer(key.Name, origin)
		return UndefinedValue
	}
	property, ok := o.exactReadMatch(key)
	if !ok {
		return UnknownValue
	}
	o.addConsumer(key.Name, origin)
	return property.GetLiteralValueAtPath(path.Rest(), tracker, origin)
}

func (o *ObjectEntity) GetReturnExpressionWhenCalledAtPath(path Path, tracker *PathTracker, origin DeoptimizableEntity) Entity {
	propertyMap := o.getPropertyMap()
	if len(path) == 0 || o.isDeoptimizedKey(path[0]) {
		return UnknownExpression
	}
	key := path[0]
	if entry := propertyMap[key.Name]; len(path) == 1 && isKnownMember(o.prototypeMembers, key) &&
		len(o.unmatchableRead) == 0 && (entry == nil || entry.exactMatchRead == nil) {
		return memberReturnExpression(o.prototypeMembers, key)
	}
	property, ok := o.exactReadMatch(key)
	if !ok {
		return UnknownExpression
	}
	o.addConsumer(key.Name, origin)
	return property.GetReturnExpressionWhenCalledAtPath(path.Rest(), tracker, origin)
}

func (o *ObjectEntity) HasEffectsWhenAccessedAtPath(path Path, ctx *InclusionContext) bool {
	if len(path) == 0 {
		return false
	}
	propertyMap := o.getPropertyMap()
	key := path[0]
	entry := propertyMap[key.Name]
	if len(path) > 1 && (o.isDeoptimizedKey(key) || entry == nil || entry.exactMatchRead == nil) {
		return true
	}
	subPath := path.Rest()
	candidates := o.properties
	if !key.Unknown {
		candidates = nil
		if entry != nil {
			candidates = entry.propertiesRead
		}
	}
	for _, property := range candidates {
		if property.HasEffectsWhenAccessedAtPath(subPath, ctx) {
			return true
		}
	}
	return false
}

func (o *ObjectEntity) HasEffectsWhenAssignedAtPath(path Path, ctx *InclusionContext) bool {
	if len(path) == 0 {
		return false
	}
	propertyMap := o.getPropertyMap()
	key := path[0]
	entry := propertyMap[key.Name]
	if len(path) > 1 && (o.isDeoptimizedKey(key) || entry == nil || entry.exactMatchRead == nil) {
		return true
	}
	subPath := path.Rest()
	var candidates []*Property
	switch {
	case key.Unknown:
		candidates = o.properties
	case len(path) > 1:
		candidates = entry.propertiesRead
	case entry != nil:
		candidates = entry.propertiesWrite
	default:
		candidates = o.unmatchableWrite
	}
	for _, property := range candidates {
		if property.HasEffectsWhenAssignedAtPath(subPath, ctx) {
			return true
		}
	}
	return false
}

func (o *ObjectEntity) HasEffectsWhenCalledAtPath(path Path, call *CallOptions, ctx *InclusionContext) bool {
	if len(path) == 0 {
		return true
	}
	propertyMap := o.getPropertyMap()
	key := path[0]
	if o.isDeoptimizedKey(key) {
		return true
	}
	entry := propertyMap[key.Name]
	if entry != nil {
		if entry.exactMatchRead == nil {
			return true
		}
	} else if len(path) > 1 || !isKnownMember(o.prototypeMembers, key) || len(o.unmatchableRead) > 0 {
		return true
	}
	subPath := path.Rest()
	if entry != nil {
		for _, property := range entry.propertiesRead {
			if property.HasEffectsWhenCalledAtPath(subPath, call, ctx) {
				return true
			}
		}
		return false
	}
	return memberHasEffectsWhenCalled(o.prototypeMembers, key, o.owner.Base().Included, call, ctx)
}

func (o *ObjectEntity) IncludeCallArguments(ctx *InclusionContext, args []Node) {
	includeAll(ctx, args)
}

func (o *ObjectEntity) MayModifyThisWhenCalledAtPath(path Path, tracker *PathTracker) bool {
	if len(path) == 0 || path[0].Unknown || o.hasUnknownDeoptimizedProperty {
		return true
	}
	entry := o.getPropertyMap()[path[0].Name]
	if entry == nil || entry.exactMatchRead == nil {
		return true
	}
	return entry.exactMatchRead.MayModifyThisWhenCalledAtPath(path.Rest(), tracker)
}

type EObject struct {
	NodeBase
	Properties []*Property

	entity *ObjectEntity
}

func (e *EObject) EachChild(fn func(Node)) {
	for _, property := range e.Properties {
		fn(property)
	}
}

func (e *EObject) object() *ObjectEntity {
	if e.entity == nil {
		e.entity = NewObjectEntity(e, e.Properties, objectMembers)
	}
	return e.entity
}

func (e *EObject) Bind() {
	e.NodeBase.Bind()
	e.object().getPropertyMap()
}

func (e *EObject) DeoptimizeCache() {
	e.object().DeoptimizeCache()
}

func (e *EObject) DeoptimizePath(path Path) {
	e.object().DeoptimizePath(path)
}

func (e *EObject) GetLiteralValueAtPath(path Path, tracker *PathTracker, origin DeoptimizableEntity) LiteralValue {
	return e.object().GetLiteralValueAtPath(path, tracker, origin)
}

func (e *EObject) GetReturnExpressionWhenCalledAtPath(path Path, tracker *PathTracker, origin DeoptimizableEntity) Entity {
	return e.object().GetReturnExpressionWhenCalledAtPath(path, tracker, origin)
}

func (e *EObject) HasEffectsWhenAccessedAtPath(path Path, ctx *InclusionContext) bool {
	return e.object().HasEffectsWhenAccessedAtPath(path, ctx)
}

func (e *EObject) HasEffectsWhenAssignedAtPath(path Path, ctx *InclusionContext) bool {
	return e.object().HasEffectsWhenAssignedAtPath(path, ctx)
}

func (e *EObject) HasEffectsWhenCalledAtPath(path Path, call *CallOptions, ctx *InclusionContext) bool {
	return e.object().HasEffectsWhenCalledAtPath(path, call, ctx)
}

func (e *EObject) MayModifyThisWhenCalledAtPath(path Path, tracker *PathTracker) bool {
	return e.object().MayModifyThisWhenCalledAtPath(path, tracker)
}
