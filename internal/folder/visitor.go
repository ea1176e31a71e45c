package folder

// Visitor receives finished entries. The Builder may call it from several
// goroutines at once; implementations synchronize their own state.
type Visitor interface {
	VisitFolder(folder *Folder)
	VisitDocument(document *Document)
}

// VisitorFunc adapts a plain function to the Visitor interface.
type VisitorFunc func(entry Entry)

// VisitFolder calls the function with folder.
func (visitorFunc VisitorFunc) VisitFolder(folder *Folder) {
	visitorFunc(folder)
}

// VisitDocument calls the function with document.
func (visitorFunc VisitorFunc) VisitDocument(document *Document) {
	visitorFunc(document)
}

// Visitors fans every call out to each visitor in order.
type Visitors []Visitor

// VisitFolder forwards folder to every visitor.
func (visitors Visitors) VisitFolder(folder *Folder) {
	for _, visitor := range visitors {
		if visitor != nil {
			visitor.VisitFolder(folder)
		}
	}
}

// VisitDocument forwards document to every visitor.
func (visitors Visitors) VisitDocument(document *Document) {
	for _, visitor := range visitors {
		if visitor != nil {
			visitor.VisitDocument(document)
		}
	}
}

// Visit dispatches entry to the matching visitor method.
func Visit(entry Entry, visitor Visitor) {
	if visitor == nil {
		return
	}
	switch typedEntry := entry.(type) {
	case *Folder:
		visitor.VisitFolder(typedEntry)
	case *Document:
		visitor.VisitDocument(typedEntry)
	}
}
