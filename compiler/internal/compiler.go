package internal

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"tlog.app/go/errors"
	"tlog.app/go/tlog"
)

// Unit is the outcome of compiling one .jack file.
type Unit struct {
	Source string
	Output string
	Info   *ClassInfo
	Err    error
}

// CompileUnit translates one class from rd. Nothing is written to w unless the whole class translated.
func CompileUnit(ctx context.Context, rd io.Reader, w io.Writer) (info *ClassInfo, err error) {
	var buf bytes.Buffer
	info, err = compileToBuffer(rd, &buf)
	if err != nil {
		return nil, err
	}
	if _, err = w.Write(buf.Bytes()); err != nil {
		return nil, errors.Wrap(err, "write vm code")
	}
	tlog.SpanFromContext(ctx).Printw("compiled unit", "class", info.Name, "bytes", buf.Len())
	return info, nil
}

func compileToBuffer(rd io.Reader, buf *bytes.Buffer) (*ClassInfo, error) {
	writer := NewVMWriter(buf)
	info, err := NewTranslator(NewTokenizer(rd), writer).CompileClass()
	if err != nil {
		return nil, err
	}
	if err = writer.Flush(); err != nil {
		return nil, errors.Wrap(err, "flush")
	}
	return info, nil
}

// Compile compiles every .jack file found at paths, a path can be a file or a directory.
// A failing unit does not stop the others, its error is kept in Unit.Err and no .vm file is written for it.
func Compile(ctx context.Context, cfg *Config, paths []string) (units []*Unit, err error) {
	files, err := collectFiles(paths, ".jack")
	if err != nil {
		return nil, err
	}
	for _, file := range files {
		unit := &Unit{Source: file}
		unit.Output, unit.Info, unit.Err = compileFile(ctx, cfg, file)
		units = append(units, unit)
	}
	return units, nil
}

func compileFile(ctx context.Context, cfg *Config, path string) (output string, info *ClassInfo, err error) {
	tr, _ := tlog.SpawnFromContextAndWrap(ctx, "compile unit", "path", path)
	defer tr.Finish("err", &err)

	f, err := os.Open(path)
	if err != nil {
		return "", nil, errors.Wrap(err, "open")
	}
	defer f.Close()

	var buf bytes.Buffer
	info, err = compileToBuffer(f, &buf)
	if err != nil {
		return "", nil, errors.Wrap(err, "compile %v", path)
	}

	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	if base != info.Name {
		tr.Printw("class name differs from file name", "class", info.Name, "file", base)
	}

	if cfg.Output.Check {
		checker := NewVMChecker(base + cfg.Output.Extension)
		if err = checker.Check(bytes.NewReader(buf.Bytes())); err != nil {
			return "", nil, errors.Wrap(err, "check %v", path)
		}
	}

	dir := cfg.Output.Dir
	if dir == "" {
		dir = filepath.Dir(path)
	}
	output = filepath.Join(dir, base+cfg.Output.Extension)
	if err = os.WriteFile(output, buf.Bytes(), 0o644); err != nil {
		return "", nil, errors.Wrap(err, "save vm code")
	}
	tr.Printw("saved", "output", output, "bytes", buf.Len(), "subroutines", len(info.Subroutines))
	return output, info, nil
}

// CheckFiles validates existing vm files, a path can be a file or a directory.
func CheckFiles(ctx context.Context, paths []string) (checked []string, err error) {
	files, err := collectFiles(paths, ".vm")
	if err != nil {
		return nil, err
	}
	for _, file := range files {
		if err = checkFile(ctx, file); err != nil {
			return checked, err
		}
		checked = append(checked, file)
	}
	return checked, nil
}

func checkFile(ctx context.Context, path string) (err error) {
	tr, _ := tlog.SpawnFromContextAndWrap(ctx, "check vm file", "path", path)
	defer tr.Finish("err", &err)

	f, err := os.Open(path)
	if err != nil {
		return errors.Wrap(err, "open")
	}
	defer f.Close()

	checker := NewVMChecker(filepath.Base(path))
	if err = checker.Check(f); err != nil {
		return err
	}
	tr.Printw("checked", "functions", len(checker.Functions()), "calls", len(checker.Calls()))
	return nil
}

func collectFiles(paths []string, ext string) (files []string, err error) {
	for _, path := range paths {
		stat, err := os.Stat(path)
		if err != nil {
			return nil, errors.Wrap(err, "stat %v", path)
		}
		if !stat.IsDir() {
			files = append(files, path)
			continue
		}
		entries, err := os.ReadDir(path)
		if err != nil {
			return nil, errors.Wrap(err, "read dir %v", path)
		}
		for _, entry := range entries {
			// Skip sub dirs and other files.
			if entry.IsDir() || filepath.Ext(entry.Name()) != ext {
				continue
			}
			files = append(files, filepath.Join(path, entry.Name()))
		}
	}
	return files, nil
}
