package archive

import (
	"errors"
	"fmt"
)

// ErrNotFound возвращается, когда архив отсутствует или не является обычным файлом
var ErrNotFound = errors.New("archive not found")

// ErrPathTraversal возвращается, когда запись архива выходит за пределы целевого каталога
var ErrPathTraversal = errors.New("archive entry outside target dir")

// PathTraversalError содержит имя записи, нарушившей границу каталога (zip-slip)
type PathTraversalError struct {
	Entry string
}

func (e *PathTraversalError) Error() string {
	return fmt.Sprintf("%s: %s", ErrPathTraversal, e.Entry)
}

func (e *PathTraversalError) Unwrap() error {
	return ErrPathTraversal
}
