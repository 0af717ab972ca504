package engine

import (
	"path/filepath"

	"github.com/ekam-build/ekam/internal/action"
	"github.com/ekam-build/ekam/internal/artifact"
	"github.com/ekam-build/ekam/internal/tag"
)

// extractTypeFactory is the engine's own built-in ActionFactory: for
// every new source file it re-provides the same artifact tagged with
// filetype:<ext> and canonical:<base>, derived purely from the path,
// never the file's content, so no source language is ever interpreted.
type extractTypeFactory struct{}

func newExtractTypeFactory() action.Factory {
	return extractTypeFactory{}
}

func (extractTypeFactory) Tags() []tag.Tag {
	return []tag.Tag{tag.FromName("file:*")}
}

func (extractTypeFactory) TryMakeAction(_ tag.Tag, art artifact.Artifact) (action.Action, bool) {
	base := art.Basename()
	ext := filepath.Ext(base)
	if base == "" {
		return nil, false
	}
	return action.ActionFunc(func(ctx action.Context) error {
		var tags []tag.Tag
		if ext != "" {
			tags = append(tags, tag.FromName("filetype:"+ext))
		}
		tags = append(tags, tag.FromName("canonical:"+base))
		ctx.Provide(art, tags...)
		return nil
	}), true
}
