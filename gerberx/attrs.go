package gerberx

import "github.com/pcbtools/gerbcore/attr"

// handleTF installs a file attribute, claiming it in the shared
// registry so a later %TA/%TO using the same name is a redefinition
// error rather than a silent shadow.
func (p *parser) handleTF(rest string) error {
	fields := attr.ParseFields(rest)
	if len(fields) == 0 || fields[0] == "" {
		return p.errf("malformed %%TF: missing attribute name")
	}
	name, values := fields[0], fields[1:]
	if !attr.ValidKey(name) {
		p.warnf("%%TF attribute name %q is not a valid attribute key", name)
		return nil
	}
	if err := p.img.Registry.Claim(attr.ScopeFile, name); err != nil {
		p.warnf("%v", err)
		return nil
	}
	p.img.FileAttrs.Set(name, values)
	return nil
}

// handleTA installs an aperture attribute, live for every aperture
// defined from this point until the next %TD clears it. Aperture-
// attribute state inherits into any object flashed/drawn with that
// aperture.
func (p *parser) handleTA(rest string) error {
	fields := attr.ParseFields(rest)
	if len(fields) == 0 || fields[0] == "" {
		return p.errf("malformed %%TA: missing attribute name")
	}
	name, values := fields[0], fields[1:]
	if !attr.ValidKey(name) {
		p.warnf("%%TA attribute name %q is not a valid attribute key", name)
		return nil
	}
	if err := p.img.Registry.Claim(attr.ScopeAperture, name); err != nil {
		p.warnf("%v", err)
		return nil
	}
	p.apertureAttrs.Set(name, values)
	return nil
}

// handleTO installs an object attribute, live for every net emitted
// until a %TD deletes it.
func (p *parser) handleTO(rest string) error {
	fields := attr.ParseFields(rest)
	if len(fields) == 0 || fields[0] == "" {
		return p.errf("malformed %%TO: missing attribute name")
	}
	name, values := fields[0], fields[1:]
	if !attr.ValidKey(name) {
		p.warnf("%%TO attribute name %q is not a valid attribute key", name)
		return nil
	}
	if err := p.img.Registry.Claim(attr.ScopeObject, name); err != nil {
		p.warnf("%v", err)
		return nil
	}
	p.objectAttrs.Set(name, values)
	return nil
}

// handleTD deletes one named attribute, or every live aperture- and
// object-scope attribute when given no name, the bare "%TD*%" form.
func (p *parser) handleTD(rest string) {
	if rest == "" {
		p.apertureAttrs.Clear()
		p.objectAttrs.Clear()
		p.img.Registry.ReleaseAll(attr.ScopeAperture)
		p.img.Registry.ReleaseAll(attr.ScopeObject)
		return
	}
	p.apertureAttrs.Delete(rest)
	p.objectAttrs.Delete(rest)
	p.img.Registry.Release(rest)
}
