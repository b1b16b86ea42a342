package corpus

import "fmt"

// PathError reports a corpus root that cannot be used.
type PathError struct {
	Root string
	Err  error
}

func (e *PathError) Error() string {
	return fmt.Sprintf("corpus root %s: %v", e.Root, e.Err)
}

func (e *PathError) Unwrap() error {
	return e.Err
}

// ReadError reports a document that could not be read.
type ReadError struct {
	Path string
	Err  error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("reading %s: %v", e.Path, e.Err)
}

func (e *ReadError) Unwrap() error {
	return e.Err
}

// FrontMatterError reports a document whose metadata block is malformed.
type FrontMatterError struct {
	Path string
	Err  error
}

func (e *FrontMatterError) Error() string {
	return fmt.Sprintf("malformed front matter in %s: %v", e.Path, e.Err)
}

func (e *FrontMatterError) Unwrap() error {
	return e.Err
}
