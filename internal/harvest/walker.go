// Package harvest walks a directory tree and produces the ordered structural
// records of an installer fragment: directory opens, file units and directory
// closes, each named with identifiers derived from reference paths.
package harvest

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/temirov/harvest/internal/ident"
	"github.com/temirov/harvest/internal/rules"
	"github.com/temirov/harvest/internal/types"
	"github.com/temirov/harvest/internal/utils"
)

const (
	// ReferenceSeparator joins segments of reference paths.
	ReferenceSeparator = `\`
	relativeSeparator  = "/"

	errorRootMissingFormat      = "%w: root %s: %w"
	errorRootNotDirectoryFormat = "%w: root %s is not a directory"
	errorRootStatFormat         = "%w: stat root %s: %w"
	errorReadDirectoryFormat    = "%w: reading directory %s: %w"
	errorIdentifierFormat       = "%w: identifier for %s: %w"
	errorEmptyRootMessage       = "%w: root path is empty"
	errorEmptyAnchorMessage     = "%w: anchor identifier is empty"
	errorNilHandlerMessage      = "%w: record handler is nil"

	skipExcludedMessage  = "skipping excluded entry"
	skipIrregularMessage = "skipping non-regular entry"
	separatorNameMessage = "entry name contains the reference separator; its reference path is ambiguous"
)

// Options configures one walk.
type Options struct {
	// Root is the filesystem directory to harvest.
	Root string
	// ReferenceRoot is the reference path of Root, the base of every emitted source.
	ReferenceRoot string
	// AnchorID identifies the pre-existing directory the harvested tree attaches to.
	AnchorID string
	// Matcher decides exclusions; nil excludes nothing.
	Matcher *rules.Matcher
	// Parallelism bounds concurrent sibling traversals; values below 2 walk sequentially.
	Parallelism int
	// Logger receives debug output about skipped entries.
	Logger *zap.Logger
}

// Handler consumes records in traversal order.
type Handler func(record types.Record) error

type recordSink interface {
	emit(record types.Record) error
}

type handlerSink Handler

func (sink handlerSink) emit(record types.Record) error {
	return sink(record)
}

type bufferSink struct {
	records []types.Record
}

func (sink *bufferSink) emit(record types.Record) error {
	sink.records = append(sink.records, record)
	return nil
}

// directoryFrame carries the paths and identifier of the directory being walked.
type directoryFrame struct {
	absolutePath  string
	relativePath  string
	referencePath string
	identifier    string
	depth         int
}

type walker struct {
	options Options
	logger  *zap.Logger
	tokens  chan struct{}
}

// Walk traverses options.Root depth-first and passes every record to handler.
// Within a directory, files are reported before subdirectories, both in the
// order the platform enumerates them. Any I/O failure aborts the walk.
func Walk(ctx context.Context, options Options, handler Handler) error {
	if handler == nil {
		return fmt.Errorf(errorNilHandlerMessage, types.ErrInvalidArguments)
	}
	if options.Root == "" {
		return fmt.Errorf(errorEmptyRootMessage, types.ErrInvalidArguments)
	}
	if options.AnchorID == "" {
		return fmt.Errorf(errorEmptyAnchorMessage, types.ErrInvalidArguments)
	}
	if ctx == nil {
		ctx = context.Background()
	}

	rootInfo, statError := os.Stat(options.Root)
	if statError != nil {
		if os.IsNotExist(statError) {
			return fmt.Errorf(errorRootMissingFormat, types.ErrPathNotFound, options.Root, statError)
		}
		return fmt.Errorf(errorRootStatFormat, types.ErrTraversal, options.Root, statError)
	}
	if !rootInfo.IsDir() {
		return fmt.Errorf(errorRootNotDirectoryFormat, types.ErrInvalidArguments, options.Root)
	}

	rootIdentifier, identifierError := ident.Directory(options.ReferenceRoot)
	if identifierError != nil {
		return fmt.Errorf(errorIdentifierFormat, types.ErrInvalidArguments, options.ReferenceRoot, identifierError)
	}

	treeWalker := &walker{options: options, logger: utils.LoggerOrNop(options.Logger)}
	if options.Parallelism > 1 {
		treeWalker.tokens = make(chan struct{}, options.Parallelism-1)
	}

	rootFrame := directoryFrame{
		absolutePath:  options.Root,
		referencePath: options.ReferenceRoot,
		identifier:    rootIdentifier,
	}
	rootNode := &types.DirectoryNode{
		ID:            options.AnchorID,
		Name:          filepath.Base(options.Root),
		Anchor:        true,
		ReferencePath: options.ReferenceRoot,
		AbsolutePath:  options.Root,
	}
	return treeWalker.walkSubtree(ctx, rootFrame, rootNode, handlerSink(handler))
}

// walkSubtree emits the open record of node, its contents and the matching close record.
func (treeWalker *walker) walkSubtree(ctx context.Context, frame directoryFrame, node *types.DirectoryNode, out recordSink) error {
	if err := out.emit(types.Record{Kind: types.RecordDirectoryOpen, Directory: node}); err != nil {
		return err
	}
	if err := treeWalker.walkDirectory(ctx, frame, out); err != nil {
		return err
	}
	return out.emit(types.Record{Kind: types.RecordDirectoryClose, Directory: node})
}

func (treeWalker *walker) walkDirectory(ctx context.Context, frame directoryFrame, out recordSink) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	entries, readError := os.ReadDir(frame.absolutePath)
	if readError != nil {
		return fmt.Errorf(errorReadDirectoryFormat, types.ErrTraversal, frame.absolutePath, readError)
	}

	var subdirectories []fs.DirEntry
	for _, entry := range entries {
		if strings.Contains(entry.Name(), ReferenceSeparator) {
			treeWalker.logger.Debug(separatorNameMessage,
				zap.String("path", filepath.Join(frame.absolutePath, entry.Name())),
				zap.String("separator", ReferenceSeparator))
		}
		if entry.IsDir() {
			subdirectories = append(subdirectories, entry)
			continue
		}
		if !isHarvestable(entry.Type()) {
			treeWalker.logger.Debug(skipIrregularMessage,
				zap.String("path", filepath.Join(frame.absolutePath, entry.Name())),
				zap.String("mode", entry.Type().String()))
			continue
		}
		relativePath := joinRelative(frame.relativePath, entry.Name())
		if treeWalker.excluded(relativePath, false) {
			continue
		}
		unit, unitError := treeWalker.fileUnit(frame, entry.Name(), relativePath)
		if unitError != nil {
			return unitError
		}
		if err := out.emit(types.Record{Kind: types.RecordFileUnit, File: unit}); err != nil {
			return err
		}
	}

	var childFrames []directoryFrame
	var childNodes []*types.DirectoryNode
	for _, entry := range subdirectories {
		relativePath := joinRelative(frame.relativePath, entry.Name())
		if treeWalker.excluded(relativePath, true) {
			continue
		}
		childFrame, childNode, childError := treeWalker.childDirectory(frame, entry.Name(), relativePath)
		if childError != nil {
			return childError
		}
		childFrames = append(childFrames, childFrame)
		childNodes = append(childNodes, childNode)
	}

	if treeWalker.tokens == nil || len(childFrames) < 2 {
		for index := range childFrames {
			if err := treeWalker.walkSubtree(ctx, childFrames[index], childNodes[index], out); err != nil {
				return err
			}
		}
		return nil
	}
	return treeWalker.walkConcurrently(ctx, childFrames, childNodes, out)
}

// walkConcurrently walks sibling subtrees into per-branch buffers and replays
// them in enumeration order, so the record sequence matches a sequential walk.
// A branch runs on its own goroutine only when a token is free; otherwise it
// runs inline, which bounds the goroutine count across nesting levels.
func (treeWalker *walker) walkConcurrently(ctx context.Context, childFrames []directoryFrame, childNodes []*types.DirectoryNode, out recordSink) error {
	branches := make([]*bufferSink, len(childFrames))
	group, groupContext := errgroup.WithContext(ctx)

	for index := range childFrames {
		branch := &bufferSink{}
		branches[index] = branch
		frame := childFrames[index]
		node := childNodes[index]

		select {
		case treeWalker.tokens <- struct{}{}:
			group.Go(func() error {
				defer func() { <-treeWalker.tokens }()
				return treeWalker.walkSubtree(groupContext, frame, node, branch)
			})
		default:
			if err := treeWalker.walkSubtree(groupContext, frame, node, branch); err != nil {
				_ = group.Wait()
				return err
			}
		}
	}

	if err := group.Wait(); err != nil {
		return err
	}
	for _, branch := range branches {
		for _, record := range branch.records {
			if err := out.emit(record); err != nil {
				return err
			}
		}
	}
	return nil
}

func (treeWalker *walker) excluded(relativePath string, isDirectory bool) bool {
	decision := treeWalker.options.Matcher.Decide(relativePath, isDirectory)
	if !decision.Excluded() {
		return false
	}
	treeWalker.logger.Debug(skipExcludedMessage,
		zap.String("path", relativePath),
		zap.Bool("directory", isDirectory),
		zap.String("rule", treeWalker.options.Matcher.Rule(decision.RuleIndex).String()))
	return true
}

func (treeWalker *walker) fileUnit(frame directoryFrame, name string, relativePath string) (*types.FileUnit, error) {
	fileID, fileError := ident.File(frame.identifier, name)
	if fileError != nil {
		return nil, fmt.Errorf(errorIdentifierFormat, types.ErrTraversal, relativePath, fileError)
	}
	componentID, componentError := ident.Component(frame.identifier, fileID)
	if componentError != nil {
		return nil, fmt.Errorf(errorIdentifierFormat, types.ErrTraversal, relativePath, componentError)
	}
	return &types.FileUnit{
		DirectoryID:   frame.identifier,
		FileID:        fileID,
		ComponentID:   componentID,
		Name:          name,
		RelativePath:  relativePath,
		ReferencePath: joinReference(frame.referencePath, name),
		AbsolutePath:  filepath.Join(frame.absolutePath, name),
		Depth:         frame.depth + 1,
	}, nil
}

func (treeWalker *walker) childDirectory(parent directoryFrame, name string, relativePath string) (directoryFrame, *types.DirectoryNode, error) {
	referencePath := joinReference(parent.referencePath, name)
	directoryID, identifierError := ident.Directory(referencePath)
	if identifierError != nil {
		return directoryFrame{}, nil, fmt.Errorf(errorIdentifierFormat, types.ErrTraversal, relativePath, identifierError)
	}
	frame := directoryFrame{
		absolutePath:  filepath.Join(parent.absolutePath, name),
		relativePath:  relativePath,
		referencePath: referencePath,
		identifier:    directoryID,
		depth:         parent.depth + 1,
	}
	node := &types.DirectoryNode{
		ID:            directoryID,
		Name:          name,
		RelativePath:  relativePath,
		ReferencePath: referencePath,
		AbsolutePath:  frame.absolutePath,
		Depth:         frame.depth,
	}
	return frame, node, nil
}

// isHarvestable reports whether a non-directory entry becomes a file unit.
// Symbolic links are kept as they are listed, without resolution.
func isHarvestable(mode fs.FileMode) bool {
	return mode.IsRegular() || mode&fs.ModeSymlink != 0
}

func joinRelative(parent, name string) string {
	if parent == "" {
		return name
	}
	return parent + relativeSeparator + name
}

// joinReference appends name to a reference path.
func joinReference(parent, name string) string {
	if parent == "" {
		return name
	}
	return parent + ReferenceSeparator + name
}
