package main

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/rmorshead/nbsvg/dom"
	"github.com/rmorshead/nbsvg/model"
	"github.com/rmorshead/nbsvg/protocol"
	"github.com/rmorshead/nbsvg/view"
)

// renderHTML writes a static HTML page with the host element, followed by the scripts
// that mount a view of m on it, with the current value of its markup.
func renderHTML(w io.Writer, m *model.Model) error {
	_, err := fmt.Fprintf(w, "<!DOCTYPE html>\n<html>\n<body>\n<div id=%q></div>\n", protocol.HostElementId)
	if err != nil {
		return errors.Wrapf(err, "failed to write page header")
	}
	doc := dom.NewRemote(dom.NewScriptWriter(w))
	v := view.New(doc, protocol.HostElementId, m)
	v.Mount()
	v.Close()
	if err = doc.Err(); err != nil {
		return err
	}
	_, err = fmt.Fprint(w, "</body>\n</html>\n")
	return errors.Wrapf(err, "failed to write page footer")
}

// renderFile renders m to the HTML file in path.
func renderFile(path string, m *model.Model) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "failed to create %q", path)
	}
	w := bufio.NewWriter(f)
	err = renderHTML(w, m)
	if err == nil {
		err = errors.Wrapf(w.Flush(), "failed to write %q", path)
	}
	if closeErr := f.Close(); err == nil && closeErr != nil {
		err = errors.Wrapf(closeErr, "failed to close %q", path)
	}
	return err
}
