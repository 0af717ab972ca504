// Package engine implements the build-by-discovery core: the Engine
// facade, the ActionDriver state machine and its reset cascade, and
// the graph state (TagIndex, DependencyTable, TriggerRegistry) they
// share. These pieces are split across files in one package rather
// than one apiece because they are tightly mutually recursive by
// design: a driver's return procedure mutates the graph, graph
// mutations fire triggers that create new drivers, and a reset
// cascade walks the graph to find drivers to requeue.
package engine
