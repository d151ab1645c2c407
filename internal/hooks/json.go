package hooks

import (
	"encoding/json"

	"github.com/szaffarano/gotask/internal/errs"
	"github.com/szaffarano/gotask/internal/task"
)

// taskDTO is the wire shape exchanged with hook programs: attributes as a
// flat object plus the derived collections, mirroring the attribute-map
// model of internal/task.Task without exposing its internals.
type taskDTO struct {
	Attributes  map[string]string `json:"attributes"`
	Tags        []string          `json:"tags,omitempty"`
	Depends     []string          `json:"depends,omitempty"`
	Annotations []annotationDTO   `json:"annotations,omitempty"`
}

type annotationDTO struct {
	Entry       int64  `json:"entry"`
	Description string `json:"description"`
}

func marshalTask(t *task.Task) ([]byte, error) {
	dto := taskDTO{Attributes: map[string]string{}}
	for _, name := range t.AttrNames() {
		dto.Attributes[name] = t.Get(name)
	}
	dto.Tags = t.Tags()
	dto.Depends = t.Dependencies()
	for _, a := range t.Annotations() {
		dto.Annotations = append(dto.Annotations, annotationDTO{Entry: a.Entry, Description: a.Description})
	}
	return json.Marshal(dto)
}

func unmarshalTask(data []byte) (*task.Task, error) {
	var dto taskDTO
	if err := json.Unmarshal(data, &dto); err != nil {
		return nil, errs.UnknownError(err, "decoding hook task payload")
	}
	annotations := make([]task.Annotation, 0, len(dto.Annotations))
	for _, a := range dto.Annotations {
		annotations = append(annotations, task.Annotation{Entry: a.Entry, Description: a.Description})
	}
	return task.FromMap(dto.Attributes, dto.Tags, annotations, dto.Depends), nil
}
